package handlers

import (
	"github.com/gin-gonic/gin"

	"mission-clinic-server/internal/middleware"
	"mission-clinic-server/internal/models"
	"mission-clinic-server/internal/store"
	"mission-clinic-server/internal/utils"
)

const sessionKey = "session"

// sessionFrom returns the store session of the authenticated caller. The
// session lives for the request, so every handler in the chain shares it.
func sessionFrom(c *gin.Context) *store.Session {
	if v, exists := c.Get(sessionKey); exists {
		if sess, ok := v.(*store.Session); ok {
			return sess
		}
	}
	participantID, _ := middleware.GetParticipantIDFromContext(c)
	sess := store.SessionFor(participantID)
	c.Set(sessionKey, sess)
	return sess
}

// lookupDay answers 404 and returns false when the clinic day does not exist.
func lookupDay(c *gin.Context, st *models.State) (models.ClinicDay, bool) {
	day, ok := st.ClinicDay(c.Param("id"))
	if !ok {
		utils.NotFound(c, "Clinic day not found")
	}
	return day, ok
}
