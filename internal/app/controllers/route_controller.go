package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/faeln1/go-guild-notifier/internal/app/repositories"
	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
)

type RouteController struct {
	routes repositories.GuildRouteRepository
}

func NewRouteController(routes repositories.GuildRouteRepository) *RouteController {
	return &RouteController{routes: routes}
}

func (c *RouteController) List(w http.ResponseWriter, r *http.Request) {
	routes, err := c.routes.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"routes": routes})
}

func (c *RouteController) Find(w http.ResponseWriter, r *http.Request) {
	guildID := strings.TrimSpace(r.PathValue("guildID"))
	route, err := c.routes.Get(r.Context(), membership.GuildID(guildID))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRouteNotFound):
			writeError(w, http.StatusNotFound, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, route)
}

type setRouteInput struct {
	MembershipChannelID   string `json:"membershipChannelId"`
	TransparencyChannelID string `json:"transparencyChannelId"`
}

func (c *RouteController) Set(w http.ResponseWriter, r *http.Request) {
	guildID := strings.TrimSpace(r.PathValue("guildID"))
	if guildID == "" {
		writeError(w, http.StatusBadRequest, ErrInvalidParam)
		return
	}
	var in setRouteInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	route := membership.GuildRoute{
		GuildID:               membership.GuildID(guildID),
		MembershipChannelID:   in.MembershipChannelID,
		TransparencyChannelID: in.TransparencyChannelID,
	}
	if err := c.routes.Upsert(r.Context(), route); err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvalidRoute):
			writeError(w, http.StatusBadRequest, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, route)
}
