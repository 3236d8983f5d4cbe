package server

import (
	"net/http"

	"github.com/completecity/petryk/internal/ai"
	"github.com/completecity/petryk/internal/database"
	"github.com/completecity/petryk/internal/mailer"
	"github.com/completecity/petryk/internal/model"
	"github.com/completecity/petryk/internal/pkerror"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// item contains all item handlers.
type item struct {
	db          database.Client
	commentator *ai.Commentator
	mailer      *mailer.Mailer
}

///// Create
////
//

// Create stores the submitted record, asks Petryk for his take on it and
// notifies the submitter. The record is persisted before the model is called
// so a model outage never loses the submission.
func (h *item) Create(c echo.Context) error {
	var params model.Item
	if err := c.Bind(&params); err != nil {
		return pkerror.NewWithCode(http.StatusBadRequest, "Could not parse item params.")
	}

	if !model.ValidEmail(params.Email) {
		return pkerror.NewWithCode(http.StatusBadRequest, "A valid email address is required")
	}

	if err := h.db.Save(&params); err != nil {
		return err
	}

	opinion, err := h.commentator.Opinion(c.Request().Context(), params.Payload())
	if err != nil {
		logrus.WithError(err).Warn("could not get Petryk's opinion")
		opinion = ai.Fallback
	}
	params.Opinion = opinion

	if err := h.db.Save(&params); err != nil {
		return err
	}

	h.mailer.NotifyCreated(&params)

	return c.JSON(http.StatusOK, &params)
}

///// List
////
//

// List renders all the stored items. It is a full scan without pagination.
func (h *item) List(c echo.Context) error {
	items, err := h.db.FindItems()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

///// Get
////
//

// Get renders the item for the given id.
func (h *item) Get(c echo.Context) error {
	record, err := h.db.FindItem(c.Param("id"))
	if err != nil {
		if h.db.IsNotFound(err) {
			return pkerror.NewWithCode(http.StatusNotFound, "Item not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, record)
}

///// Update
////
//

// Update fully replaces the item for the given id. Fields absent from the
// body do not survive, only the id is kept.
func (h *item) Update(c echo.Context) error {
	id := c.Param("id")

	existing, err := h.db.FindItem(id)
	if err != nil {
		if h.db.IsNotFound(err) {
			return pkerror.NewWithCode(http.StatusNotFound, "Item not found")
		}
		return err
	}

	var params model.Item
	if err := c.Bind(&params); err != nil {
		return pkerror.NewWithCode(http.StatusBadRequest, "Could not parse item params.")
	}

	params.ID = id
	params.CreatedAt = existing.CreatedAt

	if err := h.db.Save(&params); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &params)
}

///// Delete
////
//

// Delete removes the item for the given id.
func (h *item) Delete(c echo.Context) error {
	id := c.Param("id")

	if err := h.db.DeleteItem(id); err != nil {
		if h.db.IsNotFound(err) {
			return pkerror.NewWithCode(http.StatusNotFound, "Item not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"deleted": id,
	})
}
