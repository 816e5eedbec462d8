package repository

import (
	"fmt"
	"slices"
	"strings"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/pathsafe"
)

// Order selects how documents are sorted for display.
type Order string

const (
	OrderPath  Order = "path"
	OrderTitle Order = "title"
	OrderDate  Order = "date"
)

// ParseOrder maps a query value to an Order; empty means OrderPath.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderPath:
		return OrderPath, nil
	case OrderTitle:
		return OrderTitle, nil
	case OrderDate:
		return OrderDate, nil
	}
	return "", fmt.Errorf("repository: unknown sort order %q", s)
}

// Sort sorts docs in place. Every order falls back to pathsafe.Compare,
// so results are deterministic. OrderDate puts the newest first and undated
// documents last.
func Sort(docs []*models.Document, order Order) {
	slices.SortStableFunc(docs, func(a, b *models.Document) int {
		switch order {
		case OrderTitle:
			if c := strings.Compare(strings.ToLower(a.Metadata.Title), strings.ToLower(b.Metadata.Title)); c != 0 {
				return c
			}
		case OrderDate:
			ad, bd := a.Metadata.Dated(), b.Metadata.Dated()
			switch {
			case ad && !bd:
				return -1
			case !ad && bd:
				return 1
			case ad && bd:
				if c := b.Metadata.Date.Compare(a.Metadata.Date); c != 0 {
					return c
				}
			}
		}
		return pathsafe.Compare(a.Path, b.Path)
	})
}
