package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
)

type RouterOptions struct {
	CORSAllowedOrigins []string
	// MutationTimeout bounds POST, PUT, PATCH and DELETE requests. Zero disables it.
	MutationTimeout time.Duration
}

func NewRouter(handler *Handler, logger *logging.Logger, opts RouterOptions) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerGameRoutes(mux, handler)
	registerLedgerRoutes(mux, handler)

	return chain(mux,
		RequestTracing,
		RequestLogging(logger),
		CORS(opts.CORSAllowedOrigins),
		recoverPanic(logger),
		MutationTimeout(opts.MutationTimeout),
	)
}
