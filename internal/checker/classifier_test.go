package checker_test

import (
	"finder/internal/checker"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDomainClassifier(t *testing.T) {
	c := checker.NewDomainClassifier(
		[]string{"facebook.com", " LINE.me "},
		[]string{"sedoparking.com", "hugedomains.com"},
	)

	tests := []struct {
		url     string
		skipped bool
		parking bool
	}{
		{url: "https://www.facebook.com/shop", skipped: true},
		{url: "https://shop.LINE.me", skipped: true},
		{url: "http://ww1.sedoparking.com/?domain=x", parking: true},
		{url: "https://HugeDomains.com/domain_profile.cfm?d=x", parking: true},
		{url: "https://example.com/facebook.com", skipped: false},
		{url: "https://example.com/?r=sedoparking.com", parking: false},
		{url: "", skipped: false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			require.Equal(t, tt.skipped, c.IsSkipped(tt.url))
			require.Equal(t, tt.parking, c.IsParking(tt.url))
		})
	}
}

func TestDefaultDomainListsAreDisjoint(t *testing.T) {
	opts := checker.DefaultOptions()
	require.NoError(t, opts.Validate())

	opts.ParkingDomains = append(opts.ParkingDomains, "Facebook.com")
	require.Error(t, opts.Validate())
}
