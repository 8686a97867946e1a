package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

func TestLinkedFieldTable(t *testing.T) {
	ranges := map[CipherType][2]LinkedID{
		CipherTypeLogin:    {100, 101},
		CipherTypeCard:     {300, 305},
		CipherTypeIdentity: {400, 418},
	}

	for kind, bounds := range ranges {
		fields := LinkedFieldsFor(kind)
		require.Len(t, fields, int(bounds[1]-bounds[0])+1, kind.String())
		for i, f := range fields {
			assert.Equal(t, bounds[0]+LinkedID(i), f.ID)
			assert.Equal(t, kind, f.Kind)
			assert.NotEmpty(t, f.Name)
		}
	}

	assert.Empty(t, LinkedFieldsFor(CipherTypeSecureNote))
}

func TestLinkedFieldsFor_ReturnsCopy(t *testing.T) {
	fields := LinkedFieldsFor(CipherTypeLogin)
	fields[0].Name = "changed"

	f, ok := LookupLinkedField(LinkedLoginUsername)
	require.True(t, ok)
	assert.Equal(t, "username", f.Name)
	assert.Equal(t, "username", LinkedFieldsFor(CipherTypeLogin)[0].Name)
}

func TestLinkedValue(t *testing.T) {
	identity := &IdentityView{Title: "Dr", FirstName: "Ada", LastName: "Lovelace", City: "London"}
	card := &CardView{Number: "4242", Code: "123", ExpMonth: "7"}
	login := &LoginView{Username: "ada", Password: "hunter2"}

	tests := []struct {
		name string
		item ItemView
		id   LinkedID
		want string
	}{
		{name: "login username", item: login, id: LinkedLoginUsername, want: "ada"},
		{name: "login password", item: login, id: LinkedLoginPassword, want: "hunter2"},
		{name: "card number", item: card, id: LinkedCardNumber, want: "4242"},
		{name: "card code", item: card, id: LinkedCardCode, want: "123"},
		{name: "card exp month", item: card, id: LinkedCardExpMonth, want: "7"},
		{name: "identity city", item: identity, id: LinkedIdentityCity, want: "London"},
		{name: "identity full name", item: identity, id: LinkedIdentityFullName, want: "Dr Ada Lovelace"},
		{name: "empty property", item: identity, id: LinkedIdentityCompany, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LinkedValue(tt.item, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Error_WrongKind", func(t *testing.T) {
		_, err := LinkedValue(card, LinkedLoginUsername)
		assert.ErrorIs(t, err, ErrUnknownLinkedField)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_UnknownID", func(t *testing.T) {
		_, err := LinkedValue(login, LinkedID(102))
		assert.ErrorIs(t, err, ErrUnknownLinkedField)
	})

	t.Run("Error_NilItem", func(t *testing.T) {
		_, err := LinkedValue(nil, LinkedCardNumber)
		assert.ErrorIs(t, err, ErrUnknownLinkedField)
	})
}

func TestCipherView_FieldValue(t *testing.T) {
	linked := LinkedCardCode
	view := &CipherView{Name: "Visa", Item: &CardView{Code: "999"}}

	got, err := view.FieldValue(FieldView{Type: FieldTypeText, Value: "plain"})
	require.NoError(t, err)
	assert.Equal(t, "plain", got)

	got, err = view.FieldValue(FieldView{Type: FieldTypeLinked, LinkedID: &linked})
	require.NoError(t, err)
	assert.Equal(t, "999", got)

	_, err = view.FieldValue(FieldView{Type: FieldTypeLinked})
	assert.ErrorIs(t, err, ErrUnknownLinkedField)
}

func TestCipherView_Validate(t *testing.T) {
	cardCode := LinkedCardCode
	loginUser := LinkedLoginUsername

	tests := []struct {
		name    string
		view    *CipherView
		wantErr bool
	}{
		{
			name: "valid",
			view: &CipherView{Name: "Visa", Item: &CardView{}, Fields: []FieldView{
				{Type: FieldTypeText, Name: "pin", Value: "1"},
				{Type: FieldTypeLinked, Name: "cvv", LinkedID: &cardCode},
			}},
		},
		{name: "empty secure note", view: &CipherView{Name: "Note", Item: &SecureNoteView{}}},
		{name: "empty card", view: &CipherView{Name: "Visa", Item: &CardView{}}},
		{name: "blank name", view: &CipherView{Name: "  ", Item: &CardView{}}, wantErr: true},
		{name: "no item", view: &CipherView{Name: "Visa"}, wantErr: true},
		{name: "nil item pointer", view: &CipherView{Name: "Visa", Item: (*CardView)(nil)}, wantErr: true},
		{
			name:    "linked field of another kind",
			view:    &CipherView{Name: "Visa", Item: &CardView{}, Fields: []FieldView{{Type: FieldTypeLinked, LinkedID: &loginUser}}},
			wantErr: true,
		},
		{
			name:    "linked field without id",
			view:    &CipherView{Name: "Visa", Item: &CardView{}, Fields: []FieldView{{Type: FieldTypeLinked}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.view.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
