package database

import (
	"github.com/completecity/petryk/internal/model"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		// The whole record is overwritten, there is no field merging.
		Save(m model.Model) error
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool

		ItemInteraction
	}

	// An ItemInteraction defines all the methods used to interact with item record(s).
	ItemInteraction interface {
		// FindItem returns the item for the given id (UUID).
		FindItem(id string) (*model.Item, error)
		// FindItems returns all the stored items. It performs a full scan.
		FindItems() ([]*model.Item, error)
		// FindItemsByType returns all the items with the given reserved type.
		FindItemsByType(t string) ([]*model.Item, error)
		// DeleteItem deletes the item for the given id.
		DeleteItem(id string) error
	}
)
