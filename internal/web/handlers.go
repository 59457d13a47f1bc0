package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/user/netscan/internal/access"
	"github.com/user/netscan/internal/gateway"
	"github.com/user/netscan/internal/model"
	"github.com/user/netscan/internal/tier"
	"github.com/user/netscan/internal/validate"
)

// Authenticator resolves the authenticated user id for a request, or
// "" for anonymous callers. The session system behind it is outside
// the diagnostics core.
type Authenticator interface {
	CurrentUser(r *http.Request) string
}

// HeaderAuthenticator trusts a user-id header set by the fronting
// auth proxy.
type HeaderAuthenticator struct{}

// CurrentUser implements Authenticator.
func (HeaderAuthenticator) CurrentUser(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

// Handlers serves the diagnostic tool endpoints.
type Handlers struct {
	gw      *gateway.Gateway
	tiers   tier.Service
	auth    Authenticator
	apiKeys map[string]string
}

// NewHandlers creates the tool handlers. apiKeys maps a tool name to
// an optional static bearer key; tools without an entry are open.
func NewHandlers(gw *gateway.Gateway, tiers tier.Service, auth Authenticator, apiKeys map[string]string) *Handlers {
	if auth == nil {
		auth = HeaderAuthenticator{}
	}
	if apiKeys == nil {
		apiKeys = map[string]string{}
	}
	return &Handlers{gw: gw, tiers: tiers, auth: auth, apiKeys: apiKeys}
}

// Tool returns the handler for one diagnostic tool.
func (h *Handlers) Tool(toolID model.ToolID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeEnvelope(w, http.StatusMethodNotAllowed, errorEnvelope(toolID, "method not allowed"))
			return
		}

		if key := h.apiKeys[string(toolID)]; key != "" {
			if bearerToken(r) != key {
				writeEnvelope(w, http.StatusUnauthorized, errorEnvelope(toolID, "invalid or missing API key"))
				return
			}
		}

		req, verr := h.buildRequest(toolID, r)
		if verr != nil {
			writeEnvelope(w, http.StatusBadRequest, errorEnvelope(toolID, verr.Error()))
			return
		}

		result, err := h.gw.Run(r.Context(), req)
		writeEnvelope(w, statusFor(err, w), result)
	}
}

func (h *Handlers) buildRequest(toolID model.ToolID, r *http.Request) (model.DiagnosticRequest, error) {
	q := r.URL.Query()

	// The canonical parameter first, the generic alias second. An
	// absent target is left empty for the validator so Missing is
	// reported consistently.
	target := q.Get(toolID.ParamName())
	if target == "" {
		target = q.Get("target")
	}

	req := model.DiagnosticRequest{
		Tool:   toolID,
		Target: target,
		Mock:   parseBool(q.Get("mock")),
	}

	if toolID == model.ToolPortScan {
		ports, err := validate.Ports(q.Get("ports"))
		if err != nil {
			return req, err
		}
		req.Ports = ports
	}

	userID := h.auth.CurrentUser(r)
	req.Identity = access.Identity(userID, access.ClientIP(r))
	req.Tier = tier.Resolve(h.tiers, userID)

	return req, nil
}

// statusFor maps a typed gateway error to an HTTP status and sets the
// Retry-After header for rate-limit denials.
func statusFor(err error, w http.ResponseWriter) int {
	if err == nil {
		return http.StatusOK
	}

	var verr *validate.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}

	var aerr *access.Error
	if errors.As(err, &aerr) {
		switch aerr.Reason {
		case access.DenyUpgradeRequired:
			return http.StatusForbidden
		case access.DenyRateLimited:
			w.Header().Set("Retry-After", strconv.Itoa(int(aerr.ResetIn.Seconds())))
			return http.StatusTooManyRequests
		}
	}

	return http.StatusInternalServerError
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(auth, prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(s)
	return err == nil && v
}

func errorEnvelope(tool model.ToolID, msg string) model.DiagnosticResult {
	return model.DiagnosticResult{Tool: tool, Error: msg, Timestamp: time.Now()}
}

func writeEnvelope(w http.ResponseWriter, status int, result model.DiagnosticResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(result)
}
