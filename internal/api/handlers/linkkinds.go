package handlers

import (
	"net/http"

	"cascade-router/internal/api/models"
	"cascade-router/internal/model"

	"github.com/gin-gonic/gin"
)

var linkKindDescriptions = map[model.LinkKind]string{
	model.LinkFull:       "Receiver gets the upstream combined inflow, or the reservoir outflow of a storage station, unmodified.",
	model.LinkClipped:    "Receiver gets min(upstream, Qmax of the clip station). The excess goes to the matching overflow link.",
	model.LinkOverflow:   "Receiver gets upstream minus min(upstream, Qmax of the clip station).",
	model.LinkSpillage:   "Receiver gets the spillage of an upstream storage station.",
	model.LinkAnnualMean: "Receiver gets, every hour of a calendar year, the upstream volume of that year spread evenly over its hours.",
}

// ListLinkKinds handles GET /api/v1/link-kinds
func ListLinkKinds(c *gin.Context) {
	kinds := make([]models.LinkKindInfo, 0, len(model.LinkKinds()))
	for _, k := range model.LinkKinds() {
		kinds = append(kinds, models.LinkKindInfo{
			Name:        string(k),
			Aliases:     k.Aliases(),
			Main:        k.Main(),
			Description: linkKindDescriptions[k],
		})
	}
	c.JSON(http.StatusOK, gin.H{"link_kinds": kinds})
}
