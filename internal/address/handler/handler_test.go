package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"mxaddress/internal/address/catalog"
	"mxaddress/internal/address/handler/mocks"
	"mxaddress/internal/address/models"
	dErrors "mxaddress/pkg/domain-errors"
	"mxaddress/pkg/testutil"
)

type AddressHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	catalog *mocks.MockCatalogReader
	router  chi.Router
}

func TestAddressHandlerSuite(t *testing.T) {
	suite.Run(t, new(AddressHandlerSuite))
}

func (s *AddressHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.catalog = mocks.NewMockCatalogReader(ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(s.service, s.catalog, logger, time.Minute)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

var reynosaAddress = &models.ResolvedAddress{
	Neighborhood:   "RODRIGUEZ",
	StreetType:     models.StreetTypeCalle,
	StreetName:     "HIDALGO",
	ExteriorNumber: "123",
	InteriorNumber: "",
	PostalCode:     "88500",
}

// =============================================================================
// POST /address/resolve
// =============================================================================

func (s *AddressHandlerSuite) TestResolve() {
	s.Run("defaults to fallback and returns the address", func() {
		s.service.EXPECT().Resolve(gomock.Any(), "TAMAULIPAS", "REYNOSA", true).Return(reynosaAddress, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/address/resolve", map[string]any{
			"state":        " TAMAULIPAS ",
			"municipality": "REYNOSA",
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		got := testutil.UnmarshalResponse[map[string]string](s.T(), rr)
		s.Equal(map[string]string{
			"neighborhood":    "RODRIGUEZ",
			"street_type":     "CALLE",
			"street_name":     "HIDALGO",
			"exterior_number": "123",
			"interior_number": "",
			"postal_code":     "88500",
		}, *got)
	})

	s.Run("deadline is applied to the service call", func() {
		s.service.EXPECT().Resolve(gomock.Any(), "TAMAULIPAS", "REYNOSA", true).
			DoAndReturn(func(ctx context.Context, _, _ string, _ bool) (*models.ResolvedAddress, error) {
				_, ok := ctx.Deadline()
				s.True(ok)
				return reynosaAddress, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/address/resolve", map[string]any{
			"state": "TAMAULIPAS", "municipality": "REYNOSA",
		})
		testutil.AssertStatusOK(s.T(), testutil.DoRequest(s.router, req))
	})

	s.Run("strict failure is not found", func() {
		s.service.EXPECT().Resolve(gomock.Any(), "SONORA", "ATLANTIDA", false).
			Return(nil, &models.NoAddressDataError{State: "SONORA", Municipality: "ATLANTIDA"})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/address/resolve", map[string]any{
			"state": "SONORA", "municipality": "ATLANTIDA", "allow_fallback": false,
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
		testutil.AssertJSONContains(s.T(), rr, "error_description", "no address data for ATLANTIDA, SONORA")
	})

	s.Run("missing municipality is rejected before the service", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/address/resolve", map[string]any{
			"state": "SONORA",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
	})

	s.Run("malformed body", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/address/resolve", "{not json")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("unexpected errors are hidden", func() {
		s.service.EXPECT().Resolve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, io.ErrUnexpectedEOF)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/address/resolve", map[string]any{
			"state": "SONORA", "municipality": "HERMOSILLO",
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, string(dErrors.CodeInternal))
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.NotContains(body, "error_description")
	})
}

// =============================================================================
// POST /address/complete
// =============================================================================

func (s *AddressHandlerSuite) TestComplete() {
	s.Run("passes the partial address through", func() {
		s.service.EXPECT().Complete(gomock.Any(), models.PartialAddress{
			State:        "TAMAULIPAS",
			Municipality: "REYNOSA",
			PostalCode:   "88500",
			StreetName:   "HIDALGO",
		}).Return(&models.CompletedAddress{
			State:        "TAMAULIPAS",
			Municipality: "REYNOSA",
			Address:      *reynosaAddress,
		}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/address/complete", map[string]any{
			"state":        "TAMAULIPAS",
			"municipality": "REYNOSA",
			"postal_code":  "88500",
			"street_name":  "HIDALGO",
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		got := testutil.UnmarshalResponse[models.CompletedAddress](s.T(), rr)
		s.Equal("TAMAULIPAS", got.State)
		s.Equal(*reynosaAddress, got.Address)
	})

	s.Run("service validation errors keep their code", func() {
		s.service.EXPECT().Complete(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "unknown street type"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/address/complete", map[string]any{
			"state": "TAMAULIPAS", "municipality": "REYNOSA", "street_type": "AUTOBAHN",
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
		testutil.AssertJSONContains(s.T(), rr, "error_description", "unknown street type")
	})

	s.Run("missing state", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/address/complete", map[string]any{
			"municipality": "REYNOSA",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
	})
}

// =============================================================================
// GET /catalog and /healthz
// =============================================================================

func (s *AddressHandlerSuite) TestCatalog() {
	s.Run("lists entries", func() {
		s.catalog.EXPECT().Lookup("TAMAULIPAS", "REYNOSA").
			Return([]models.PostalEntry{{PostalCode: "88500", Neighborhood: "RODRIGUEZ"}})

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/catalog/TAMAULIPAS/REYNOSA"))

		testutil.AssertStatusOK(s.T(), rr)
		got := testutil.UnmarshalResponse[CatalogResponse](s.T(), rr)
		s.Equal([]models.PostalEntry{{PostalCode: "88500", Neighborhood: "RODRIGUEZ"}}, got.Entries)
	})

	s.Run("unknown key", func() {
		s.catalog.EXPECT().Lookup("SONORA", "ATLANTIDA").Return(nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/catalog/SONORA/ATLANTIDA"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}

func (s *AddressHandlerSuite) TestHealth() {
	s.Run("loaded catalog", func() {
		s.catalog.EXPECT().Stats().Return(catalog.Stats{Loaded: true, Keys: 2, Entries: 10})

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))

		testutil.AssertStatusOK(s.T(), rr)
		got := testutil.UnmarshalResponse[HealthResponse](s.T(), rr)
		s.Equal(HealthResponse{Status: "ok", CatalogLoaded: true, CatalogKeys: 2, CatalogEntries: 10}, *got)
	})

	s.Run("catalog not loaded", func() {
		s.catalog.EXPECT().Stats().Return(catalog.Stats{})

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
		testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
		testutil.AssertJSONContains(s.T(), rr, "status", "unavailable")
	})
}
