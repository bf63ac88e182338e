package fire

import (
	"net/http"
	"strings"

	"github.com/fire-lib/fire-http/resources"
	"github.com/fire-lib/fire-http/router"
)

// CORSOptions configures the CORS raw route.
type CORSOptions struct {
	AllowOrigin      string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
}

// DefaultCORSOptions is a permissive default: any origin, the common
// verbs, no credentials.
func DefaultCORSOptions() CORSOptions {
	return CORSOptions{
		AllowOrigin:  "*",
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	}
}

// CORS returns a raw route that answers every OPTIONS preflight directly and
// stamps the Access-Control-* response headers onto every other method by
// declining after setting them, so the normal router still produces the
// actual response body.
func CORS(opts CORSOptions) RawHandler {
	methods := strings.Join(opts.AllowMethods, ", ")
	headers := strings.Join(opts.AllowHeaders, ", ")

	return RawHandlerFunc(func(w http.ResponseWriter, r *http.Request, _ router.Params, _ *resources.Map) (bool, error) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", opts.AllowOrigin)
		if methods != "" {
			h.Set("Access-Control-Allow-Methods", methods)
		}
		if headers != "" {
			h.Set("Access-Control-Allow-Headers", headers)
		}
		if opts.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if r.Method != http.MethodOptions {
			return true, nil
		}
		w.WriteHeader(http.StatusNoContent)
		return false, nil
	})
}
