// Package models contains the gorm model definitions of the bulletin board schema.
package models
