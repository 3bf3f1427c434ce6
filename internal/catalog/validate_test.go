package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/plateful/api/internal/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func intPtr(v int32) *int32 { return &v }

// fishPlateSnapshot mirrors the demo menu: one variant plus a required
// SINGLE "Fish Type" group and a required MULTI "Sides" group (1..2).
func fishPlateSnapshot() (*ItemSnapshot, map[string]uuid.UUID) {
	ids := map[string]uuid.UUID{
		"fishType":   uuid.New(),
		"sides":      uuid.New(),
		"tilapia":    uuid.New(),
		"redSnapper": uuid.New(),
		"fries":      uuid.New(),
		"mac":        uuid.New(),
		"variant":    uuid.New(),
	}

	snap := &ItemSnapshot{
		ItemID: uuid.New(),
		Title:  "Fried Fish Plate",
		Variants: []Variant{
			{ID: ids["variant"], Name: "Lunch", Price: d("10.99"), IsDefault: true},
		},
		Attachments: []Attachment{
			{
				GroupID:       ids["fishType"],
				GroupName:     "Fish Type",
				SelectionType: enum.SelectionTypeSingle,
				IsActive:      true,
				Required:      true,
				EffMin:        1,
				EffMax:        intPtr(1),
				Options: []OptionChoice{
					{ID: ids["tilapia"], Name: "Tilapia", PriceDelta: d("0")},
					{ID: ids["redSnapper"], Name: "Red Snapper", PriceDelta: d("3.00")},
				},
			},
			{
				GroupID:       ids["sides"],
				GroupName:     "Sides",
				SelectionType: enum.SelectionTypeMulti,
				IsActive:      true,
				Required:      true,
				EffMin:        1,
				EffMax:        intPtr(2),
				Options: []OptionChoice{
					{ID: ids["fries"], Name: "Fries", PriceDelta: d("0")},
					{ID: ids["mac"], Name: "Mac & Cheese", PriceDelta: d("2.50")},
				},
			},
		},
	}
	return snap, ids
}

func TestValidateSelection_FishPlate(t *testing.T) {
	snap, ids := fishPlateSnapshot()

	chosen, total, err := ValidateSelection(snap, Selection{
		ids["fishType"]: {ids["redSnapper"]},
		ids["sides"]:    {ids["fries"], ids["mac"]},
	})
	require.NoError(t, err)

	assert.Len(t, chosen, 3)
	assert.True(t, total.Equal(d("5.50")), "option total: got %s, want 5.50", total)

	// Snapshot fields carry the names the order line will record.
	assert.Equal(t, "Fish Type", chosen[0].GroupName)
	assert.Equal(t, "Red Snapper", chosen[0].Name)
}

func TestValidateSelection_RequiredSingle(t *testing.T) {
	snap, ids := fishPlateSnapshot()

	// Zero selections on a required group.
	_, _, err := ValidateSelection(snap, Selection{
		ids["sides"]: {ids["fries"]},
	})
	require.ErrorIs(t, err, ErrSelectionInvalid)

	// Two selections on a SINGLE group.
	_, _, err = ValidateSelection(snap, Selection{
		ids["fishType"]: {ids["tilapia"], ids["redSnapper"]},
		ids["sides"]:    {ids["fries"]},
	})
	require.ErrorIs(t, err, ErrSelectionInvalid)
}

func TestValidateSelection_MultiBounds(t *testing.T) {
	snap, ids := fishPlateSnapshot()
	third := uuid.New()
	snap.Attachments[1].Options = append(snap.Attachments[1].Options,
		OptionChoice{ID: third, Name: "Slaw", PriceDelta: d("1.00")})

	single := Selection{ids["fishType"]: {ids["tilapia"]}}

	// 1 and 2 selections pass.
	for _, picks := range [][]uuid.UUID{
		{ids["fries"]},
		{ids["fries"], ids["mac"]},
	} {
		single[ids["sides"]] = picks
		_, _, err := ValidateSelection(snap, single)
		assert.NoError(t, err, "picks=%d", len(picks))
	}

	// 0 and 3 selections fail.
	single[ids["sides"]] = nil
	_, _, err := ValidateSelection(snap, single)
	assert.ErrorIs(t, err, ErrSelectionInvalid)

	single[ids["sides"]] = []uuid.UUID{ids["fries"], ids["mac"], third}
	_, _, err = ValidateSelection(snap, single)
	assert.ErrorIs(t, err, ErrSelectionInvalid)
}

func TestValidateSelection_UnknownIDsDropped(t *testing.T) {
	snap, ids := fishPlateSnapshot()

	// A foreign id alongside a valid one: the stray is dropped and the
	// remaining count still satisfies the group.
	chosen, total, err := ValidateSelection(snap, Selection{
		ids["fishType"]: {ids["tilapia"], uuid.New()},
		ids["sides"]:    {ids["fries"]},
	})
	require.NoError(t, err)
	assert.Len(t, chosen, 2)
	assert.True(t, total.Equal(d("0")))

	// Only stray ids: the filtered count is zero and required kicks in.
	_, _, err = ValidateSelection(snap, Selection{
		ids["fishType"]: {uuid.New()},
		ids["sides"]:    {ids["fries"]},
	})
	assert.ErrorIs(t, err, ErrSelectionInvalid)
}

func TestValidateSelection_InactiveGroupSkipped(t *testing.T) {
	snap, ids := fishPlateSnapshot()
	snap.Attachments[0].IsActive = false

	// Fish Type is inactive, so leaving it empty is fine.
	chosen, total, err := ValidateSelection(snap, Selection{
		ids["sides"]: {ids["mac"]},
	})
	require.NoError(t, err)
	assert.Len(t, chosen, 1)
	assert.True(t, total.Equal(d("2.50")))
}

func TestValidateSelection_DuplicateIDsCountOnce(t *testing.T) {
	snap, ids := fishPlateSnapshot()

	chosen, _, err := ValidateSelection(snap, Selection{
		ids["fishType"]: {ids["tilapia"], ids["tilapia"]},
		ids["sides"]:    {ids["fries"]},
	})
	require.NoError(t, err)
	assert.Len(t, chosen, 2)
}

func TestResolveVariant(t *testing.T) {
	snap, _ := fishPlateSnapshot()
	dinner := Variant{ID: uuid.New(), Name: "Dinner", Price: d("14.99")}
	snap.Variants = append(snap.Variants, dinner)

	// Explicit choice wins.
	v, err := snap.ResolveVariant(dinner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dinner", v.Name)

	// No choice falls back to the default.
	v, err = snap.ResolveVariant(uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", v.Name)

	// Unknown explicit id is an error, not a silent fallback.
	_, err = snap.ResolveVariant(uuid.New())
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestResolveVariant_NoDefaultFallsBackToFirst(t *testing.T) {
	snap, _ := fishPlateSnapshot()
	snap.Variants[0].IsDefault = false

	v, err := snap.ResolveVariant(uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", v.Name)
}
