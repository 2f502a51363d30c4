package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/openclaw/erc8004-go/networks"
	"github.com/openclaw/erc8004-go/registry"
)

// AgentReader is the read-side registry surface the gateway exposes. The
// concrete *registry.Client satisfies it; tests substitute a mock.
type AgentReader interface {
	GetAgent(ctx context.Context, agentID *big.Int) (*registry.Agent, error)
	Exists(ctx context.Context, agentID *big.Int) bool
	AgentCount(ctx context.Context, owner common.Address) (*big.Int, error)
	GetReputation(ctx context.Context, agentID *big.Int, filters registry.ReputationFilters) *registry.ReputationSummary
	NetworkInfo() registry.NetworkInfo
}

// Handler serves the read-only registry API. Write operations need a
// private key and stay in the CLI and the library; the gateway never
// holds key material.
type Handler struct {
	reader AgentReader
	log    *slog.Logger
}

// NewHandler creates an HTTP handler backed by the given registry reader.
func NewHandler(reader AgentReader, log *slog.Logger) *Handler {
	return &Handler{reader: reader, log: log}
}

// HandleGetAgent serves GET /api/v1/agent/{agent_id}.
func (h *Handler) HandleGetAgent(w http.ResponseWriter, r *http.Request) {
	agentID, ok := h.agentIDParam(w, r)
	if !ok {
		return
	}

	agent, err := h.reader.GetAgent(r.Context(), agentID)
	if err != nil {
		if errors.Is(err, registry.ErrAgentNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("agent lookup failed", "agent_id", agentID, "err", err)
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.writeJSON(w, agent)
}

// HandleExists serves GET /api/v1/exists/{agent_id}.
func (h *Handler) HandleExists(w http.ResponseWriter, r *http.Request) {
	agentID, ok := h.agentIDParam(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, map[string]any{
		"agent_id": agentID.String(),
		"exists":   h.reader.Exists(r.Context(), agentID),
	})
}

// HandleOwner serves GET /api/v1/owner/{address}, reporting how many
// agent records the address owns.
func (h *Handler) HandleOwner(w http.ResponseWriter, r *http.Request) {
	addrHex := chi.URLParam(r, "address")
	if !common.IsHexAddress(addrHex) {
		h.writeError(w, http.StatusBadRequest, "invalid owner address")
		return
	}
	owner := common.HexToAddress(addrHex)

	count, err := h.reader.AgentCount(r.Context(), owner)
	if err != nil {
		h.log.Error("agent count failed", "owner", owner, "err", err)
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.writeJSON(w, map[string]any{
		"owner":       owner.Hex(),
		"agent_count": count.String(),
	})
}

// HandleReputation serves GET /api/v1/reputation/{agent_id}. Reviewer
// addresses come from repeated "client" query parameters; tag1 and tag2
// narrow the summary further.
func (h *Handler) HandleReputation(w http.ResponseWriter, r *http.Request) {
	agentID, ok := h.agentIDParam(w, r)
	if !ok {
		return
	}

	filters := registry.ReputationFilters{
		Tag1: r.URL.Query().Get("tag1"),
		Tag2: r.URL.Query().Get("tag2"),
	}
	for _, addrHex := range r.URL.Query()["client"] {
		if !common.IsHexAddress(addrHex) {
			h.writeError(w, http.StatusBadRequest, "invalid client address: "+addrHex)
			return
		}
		filters.ClientAddresses = append(filters.ClientAddresses, common.HexToAddress(addrHex))
	}

	h.writeJSON(w, h.reader.GetReputation(r.Context(), agentID, filters))
}

// HandleNetworks serves GET /api/v1/networks: the bound network first,
// then every known network descriptor.
func (h *Handler) HandleNetworks(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]any{
		"current":  h.reader.NetworkInfo(),
		"networks": networks.All(),
	})
}

func (h *Handler) agentIDParam(w http.ResponseWriter, r *http.Request) (*big.Int, bool) {
	raw := chi.URLParam(r, "agent_id")
	agentID, ok := new(big.Int).SetString(raw, 10)
	if !ok || agentID.Sign() < 0 {
		h.writeError(w, http.StatusBadRequest, "invalid agent id: "+raw)
		return nil, false
	}
	return agentID, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}
