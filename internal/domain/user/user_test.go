package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brugger-UFMG/Online-Market/internal/domain"
)

func TestIdentity_ChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		wantErr error
		want    string
	}{
		{name: "success", current: "old", next: "new-pass", want: "new-pass"},
		{name: "wrong current", current: "bad", next: "new-pass", wantErr: ErrWrongPassword, want: "old"},
		{name: "single char", current: "old", next: "x", wantErr: domain.ErrInvalidArgument, want: "old"},
		{name: "empty", current: "old", next: "", wantErr: ErrShortPassword, want: "old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := &Identity{ID: 1, Name: "ana", Password: "old"}

			err := id.ChangePassword(tt.current, tt.next)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, id.Password)
			assert.True(t, id.Authenticate(tt.want))
		})
	}
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "owner", RoleOwner.String())
	assert.Equal(t, "customer", RoleCustomer.String())
	assert.Equal(t, "Role(9)", Role(9).String())
}

func TestCustomer_OrderHistory(t *testing.T) {
	c := NewCustomer(3, "bia", "pw", Address{ZipCode: "12345-678", HouseNumber: 10})

	assert.Equal(t, 3, c.CustomerID())
	assert.Empty(t, c.OrderIDs())

	c.RecordOrder(0)
	c.RecordOrder(4)
	ids := c.OrderIDs()
	assert.Equal(t, []int{0, 4}, ids)

	ids[0] = 99
	assert.Equal(t, []int{0, 4}, c.OrderIDs())
}

func TestDirectory_Register(t *testing.T) {
	d := NewDirectory()
	d.Reserve("admin", 0)

	ana, err := d.Register("ana", "pw", Address{City: "Belo Horizonte"})
	require.NoError(t, err)
	assert.Equal(t, 1, ana.ID)

	bia, err := d.Register("bia", "pw", Address{})
	require.NoError(t, err)
	assert.Equal(t, 2, bia.ID)

	got, err := d.ByName("ana")
	require.NoError(t, err)
	assert.Same(t, ana, got)

	got, err = d.Get(2)
	require.NoError(t, err)
	assert.Same(t, bia, got)
	assert.Equal(t, 2, d.Len())
}

func TestDirectory_RegisterRejects(t *testing.T) {
	d := NewDirectory()
	d.Reserve("admin", 0)
	_, err := d.Register("ana", "pw", Address{})
	require.NoError(t, err)

	tests := []struct {
		name     string
		user     string
		password string
		wantErr  error
	}{
		{name: "owner name", user: "admin", password: "pw", wantErr: domain.ErrDuplicateKey},
		{name: "customer name", user: "ana", password: "pw", wantErr: domain.ErrDuplicateKey},
		{name: "short password", user: "carla", password: "p", wantErr: domain.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Register(tt.user, tt.password, Address{})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, d.Len())
		})
	}
}

func TestDirectory_IDsAreNotReused(t *testing.T) {
	d := NewDirectory()
	d.Reserve("admin", 0)
	require.NoError(t, d.Add(NewCustomer(7, "gil", "pw", Address{})))

	c, err := d.Register("hugo", "pw", Address{})
	require.NoError(t, err)
	assert.Equal(t, 8, c.ID)
	assert.Equal(t, 9, d.NextID())
}

func TestDirectory_Add(t *testing.T) {
	tests := []struct {
		name    string
		c       *Customer
		wantErr error
	}{
		{name: "new", c: NewCustomer(2, "bia", "pw", Address{})},
		{name: "duplicate id", c: NewCustomer(1, "bia", "pw", Address{}), wantErr: domain.ErrDuplicateKey},
		{name: "owner id", c: NewCustomer(0, "bia", "pw", Address{}), wantErr: domain.ErrDuplicateKey},
		{name: "duplicate name", c: NewCustomer(2, "ana", "pw", Address{}), wantErr: domain.ErrDuplicateKey},
		{name: "owner name", c: NewCustomer(2, "admin", "pw", Address{}), wantErr: domain.ErrDuplicateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDirectory()
			d.Reserve("admin", 0)
			require.NoError(t, d.Add(NewCustomer(1, "ana", "pw", Address{})))

			err := d.Add(tt.c)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 1, d.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2, d.Len())
		})
	}
}

func TestDirectory_NotFound(t *testing.T) {
	d := NewDirectory()

	_, err := d.Get(5)
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, 5, nfErr.CustomerID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = d.ByName("zoe")
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "zoe", nfErr.Name)
	assert.Contains(t, err.Error(), `"zoe"`)
}

func TestDirectory_ListOrderedByID(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Add(NewCustomer(5, "e", "pw", Address{})))
	require.NoError(t, d.Add(NewCustomer(2, "b", "pw", Address{})))
	require.NoError(t, d.Add(NewCustomer(9, "i", "pw", Address{})))

	var ids []int
	for _, c := range d.List() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{2, 5, 9}, ids)
}
