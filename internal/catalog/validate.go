package catalog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrSelectionInvalid = errors.New("invalid option selection")

// Selection is the raw customer payload: group id -> chosen option ids.
type Selection map[uuid.UUID][]uuid.UUID

// ChosenOption is a validated option, ready to become a line snapshot.
type ChosenOption struct {
	OptionID   uuid.UUID
	GroupName  string
	Name       string
	PriceDelta decimal.Decimal
}

// ValidateSelection checks the customer's choices against every active
// attachment and returns the resolved options plus the delta sum. It is
// pure: no storage, no mutation of the snapshot.
//
// Ids that do not name an available option of the group are dropped
// rather than rejected, matching the storefront's permissive handling
// of stale menus; the min/max counts then apply to what survives.
func ValidateSelection(s *ItemSnapshot, sel Selection) ([]ChosenOption, decimal.Decimal, error) {
	var chosen []ChosenOption
	total := decimal.Zero

	for _, att := range s.Attachments {
		if !att.IsActive {
			continue
		}

		picked := filterToGroup(att, sel[att.GroupID])
		count := int32(len(picked))

		if att.Required && count == 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: %s is required", ErrSelectionInvalid, att.GroupName)
		}
		if count < att.EffMin {
			return nil, decimal.Zero, fmt.Errorf("%w: %s needs at least %d selection(s)", ErrSelectionInvalid, att.GroupName, att.EffMin)
		}
		if att.EffMax != nil && count > *att.EffMax {
			return nil, decimal.Zero, fmt.Errorf("%w: %s allows at most %d selection(s)", ErrSelectionInvalid, att.GroupName, *att.EffMax)
		}

		for _, opt := range picked {
			chosen = append(chosen, ChosenOption{
				OptionID:   opt.ID,
				GroupName:  att.GroupName,
				Name:       opt.Name,
				PriceDelta: opt.PriceDelta,
			})
			total = total.Add(opt.PriceDelta)
		}
	}

	return chosen, total, nil
}

// filterToGroup keeps only ids naming an available option of the
// attachment's group, preserving the group's option order and ignoring
// duplicates.
func filterToGroup(att Attachment, ids []uuid.UUID) []OptionChoice {
	if len(ids) == 0 {
		return nil
	}
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var picked []OptionChoice
	for _, opt := range att.Options {
		if wanted[opt.ID] {
			picked = append(picked, opt)
		}
	}
	return picked
}
