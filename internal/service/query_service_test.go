package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestQueryPagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 0; i < 12; i++ {
		f.createTicket(t)
		f.clock.Advance(time.Minute)
	}

	page, err := f.queries.Query(ctx, repository.TicketFilter{}, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, 12, page.TotalCount)
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, 10, page.PageSize)
	require.Len(t, page.Items, 10)
	assert.Equal(t, "INC20250310012", page.Items[0].Number)

	second, err := f.queries.Query(ctx, repository.TicketFilter{}, repository.Page{Number: 2, Size: 10})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "INC20250310001", second.Items[1].Number)

	beyond, err := f.queries.Query(ctx, repository.TicketFilter{}, repository.Page{Number: 5, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 12, beyond.TotalCount)
}

func TestQueryFiltersAndScope(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jam := f.createTicket(t)
	input := printerJam()
	input.Title = "VPN drops"
	input.Description = "Disconnects hourly"
	input.CategoryID = "sw"
	vpn, err := f.lifecycle.CreateTicket(ctx, input)
	require.NoError(t, err)
	_, err = f.lifecycle.Assign(ctx, "admin", vpn.ID, strPtr("bob"))
	require.NoError(t, err)

	search := "PRINTER"
	page, err := f.queries.Query(ctx, repository.TicketFilter{Search: &search}, repository.Page{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, jam.ID, page.Items[0].ID)

	bob := domain.Principal{UserID: "bob", Role: domain.RoleStaff, DepartmentID: strPtr("it")}
	filter, err := ScopeFilter(bob, ViewAssigned, repository.TicketFilter{})
	require.NoError(t, err)
	page, err = f.queries.Query(ctx, filter, repository.Page{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, vpn.ID, page.Items[0].ID)

	carol := domain.Principal{UserID: "carol", Role: domain.RoleStaff, DepartmentID: strPtr("hr")}
	filter, err = ScopeFilter(carol, ViewAll, repository.TicketFilter{})
	require.NoError(t, err)
	page, err = f.queries.Query(ctx, filter, repository.Page{})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
}

func TestQueryRejectsNegativePaging(t *testing.T) {
	f := newFixture(t)
	_, err := f.queries.Query(context.Background(), repository.TicketFilter{}, repository.Page{Number: -1})
	assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))

	page, err := f.queries.Query(context.Background(), repository.TicketFilter{}, repository.Page{Size: 500})
	require.NoError(t, err)
	assert.Equal(t, repository.MaxPageSize, page.PageSize)
}
