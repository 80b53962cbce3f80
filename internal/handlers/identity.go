package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopuz/payments-service/pkg/utils"
)

// HeaderUserId carries the authenticated caller's id, injected by the
// auth collaborator in front of this service. Session mechanics are out of
// scope here; the header is trusted as already verified.
const HeaderUserId = "X-User-Id"

func callerID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(HeaderUserId)
	if utils.IsEmpty(raw) {
		return uuid.Nil, errors.New("missing " + HeaderUserId + " header")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("malformed " + HeaderUserId + " header")
	}
	return id, nil
}
