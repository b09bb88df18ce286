package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/justestif/go-spotify-ai-curator/internal/auth"
	"github.com/justestif/go-spotify-ai-curator/internal/export"
	"github.com/justestif/go-spotify-ai-curator/internal/logging"
	"github.com/justestif/go-spotify-ai-curator/internal/spotify"
	"github.com/justestif/go-spotify-ai-curator/internal/suggest"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// statusClientClosed is reported when the caller went away mid-request.
const statusClientClosed = 499

var errBadRequest = errors.New("invalid request")

var validate = validator.New(validator.WithRequiredStructEnabled())

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error          string         `json:"error"`
	NeedsAuth      bool           `json:"needsAuth,omitempty"`
	NeedsReauth    bool           `json:"needsReauth,omitempty"`
	ProviderStatus int            `json:"providerStatus,omitempty"`
	Result         *export.Result `json:"result,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log := logging.Logger()
		log.Warn().Err(err).Msg("writing response")
	}
}

// errorResponse maps an error to a status code and body.
// Order matters: a catalog write rejected with 401/403 asks for re-auth.
func errorResponse(err error) (int, errorBody) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, errorBody{Error: "Unauthorized", NeedsAuth: true}
	case errors.Is(err, auth.ErrAuthExpired), errors.Is(err, spotify.ErrUnauthorized):
		return http.StatusUnauthorized, errorBody{Error: "Spotify session expired, please sign in again", NeedsReauth: true}
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, errorBody{Error: err.Error()}
	case errors.Is(err, suggest.ErrNoSeeds):
		return http.StatusBadRequest, errorBody{Error: "Pick a mood, a track or an artist to get recommendations"}
	case errors.Is(err, suggest.ErrModelUnavailable):
		return http.StatusBadGateway, errorBody{Error: "The recommendation model is unavailable right now, try again shortly"}
	case errors.Is(err, suggest.ErrMalformedModelOutput):
		return http.StatusBadGateway, errorBody{Error: "The recommendation model returned an unreadable answer, try again"}
	case errors.Is(err, export.ErrNoResolvedTracks):
		return http.StatusNotFound, errorBody{Error: "Couldn't find any of those tracks on Spotify"}
	case errors.Is(err, export.ErrCatalogWriteFailed):
		return http.StatusBadGateway, errorBody{Error: "Spotify rejected the playlist", ProviderStatus: spotify.StatusCode(err)}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorBody{Error: "Request timed out"}
	case errors.Is(err, context.Canceled):
		return statusClientClosed, errorBody{Error: "Request cancelled"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "Something went wrong"}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorResult(w, r, err, nil)
}

// writeErrorResult writes an error response that also carries a partial
// export result.
func writeErrorResult(w http.ResponseWriter, r *http.Request, err error, res *export.Result) {
	status, body := errorResponse(err)
	body.Result = res

	log := logging.Ctx(r.Context())
	if status >= http.StatusInternalServerError && status != statusClientClosed {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, body)
}

// decodeJSON reads and validates a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: malformed JSON", errBadRequest)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		parts = append(parts, fmt.Sprintf("%s failed %q", field, fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
