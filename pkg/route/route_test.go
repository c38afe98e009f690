package route

import (
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestParse(t *testing.T) {
	tests := []struct {
		fragment string
		want     Route
	}{
		{"", Route{View: ViewLogin}},
		{"#", Route{View: ViewLogin}},
		{"#dashboard", Route{View: ViewDashboard}},
		{"dashboard", Route{View: ViewDashboard}},
		{"#ngo-details/7", Route{View: ViewDetails, OrganizationID: 7}},
		{"ngo-details/42/extra", Route{View: ViewDetails, OrganizationID: 42}},
		{"ngo-details/12abc", Route{View: ViewDetails, OrganizationID: 12}},
		{"#ngo-details/abc", Route{View: ViewDetails, Invalid: true}},
		{"#ngo-details/", Route{View: ViewDetails, Invalid: true}},
		{"#ngo-details/-", Route{View: ViewDetails, Invalid: true}},
		{"#settings", Route{View: ViewLogin}},
		{"#Dashboard", Route{View: ViewLogin}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.fragment), func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.fragment))
		})
	}
}

func TestGuardMessage(t *testing.T) {
	assert.Equal(t, MsgLoginForDashboard, Parse("dashboard").GuardMessage())
	assert.Equal(t, MsgLoginForDetails, Parse("ngo-details/3").GuardMessage())
	assert.Equal(t, MsgLoginForDetails, Parse("ngo-details/x").GuardMessage())
	assert.Equal(t, "", Parse("").GuardMessage())
	assert.False(t, Parse("").Protected())
	assert.True(t, Parse("ngo-details/x").Protected())
}

func TestDetailsRoundTrip(t *testing.T) {
	for _, id := range []int{0, 1, 7, 1234} {
		assert.Equal(t, Route{View: ViewDetails, OrganizationID: id}, Parse(Details(id)))
	}
}
