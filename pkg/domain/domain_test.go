package domain_test

import (
	"finder/pkg/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultDeadStatuses(t *testing.T) {
	dead := domain.DefaultDeadStatuses()

	require.False(t, dead.Has(domain.StatusOK))
	require.False(t, dead.Has(domain.StatusNoWebsite))
	require.Len(t, dead, len(domain.AllStatuses())-2)
	for _, s := range []domain.Status{
		domain.StatusNoDNS, domain.StatusDeadDomain, domain.StatusSSLError, domain.StatusTimeout,
		domain.StatusConnectionError, domain.StatusHTTPError4xx, domain.StatusHTTPError5xx,
		domain.StatusRedirectParking, domain.StatusUnderConstruction, domain.StatusUnknown,
	} {
		require.True(t, dead.Has(s), "%s should be dead", s)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := domain.ParseStatus(" http_error_4xx ")
	require.NoError(t, err)
	require.Equal(t, domain.StatusHTTPError4xx, s)

	_, err = domain.ParseStatus("ALIVE")
	require.Error(t, err)

	set, err := domain.ParseStatusSet([]string{"NO_DNS", "timeout"})
	require.NoError(t, err)
	require.Equal(t, []domain.Status{domain.StatusNoDNS, domain.StatusTimeout}, set.Sorted())

	_, err = domain.ParseStatusSet([]string{"NO_DNS", "nope"})
	require.Error(t, err)
}

func TestStatusSetClone(t *testing.T) {
	orig := domain.NewStatusSet(domain.StatusOK)
	clone := orig.Clone()
	clone[domain.StatusTimeout] = struct{}{}

	require.False(t, orig.Has(domain.StatusTimeout))
	require.True(t, clone.Has(domain.StatusOK))
}

func TestIsPotentialLead(t *testing.T) {
	dead := domain.DefaultDeadStatuses()

	tests := []struct {
		name     string
		business domain.Business
		want     bool
	}{
		{
			name:     "no website",
			business: domain.Business{Website: "  "},
		},
		{
			name:     "not checked",
			business: domain.Business{Website: "https://a.example"},
		},
		{
			name: "healthy website",
			business: domain.Business{
				Website:      "https://a.example",
				WebsiteCheck: &domain.CheckResult{Status: domain.StatusOK},
			},
		},
		{
			name: "dead website",
			business: domain.Business{
				Website:      "https://a.example",
				WebsiteCheck: &domain.CheckResult{Status: domain.StatusNoDNS},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.business.IsPotentialLead(dead))
		})
	}
}

func TestCategory(t *testing.T) {
	require.Equal(t, domain.OtherCategory, domain.Category(nil))
	require.Equal(t, "ร้านอาหาร", domain.Category([]string{"unknown_type", "restaurant"}))
	require.Equal(t, "Tattoo Parlor", domain.Category([]string{"tattoo_parlor"}))
}

func TestLeadFromBusiness(t *testing.T) {
	b := domain.Business{
		PlaceID:      "p1",
		Name:         "Khao Soi Shop",
		Phone:        "053 000 000",
		Website:      "https://khaosoi.example",
		Address:      "Chiang Mai",
		Rating:       4.5,
		RatingsTotal: 120,
		Types:        []string{"restaurant"},
		WebsiteCheck: &domain.CheckResult{Status: domain.StatusTimeout, Reason: "Request timed out after 10 seconds"},
	}

	lead := domain.LeadFromBusiness(b)
	require.Equal(t, "Khao Soi Shop", lead.BusinessName)
	require.Equal(t, "ร้านอาหาร", lead.BusinessCategory)
	require.Equal(t, "TIMEOUT", lead.WebsiteStatus)
	require.Equal(t, "Request timed out after 10 seconds", lead.StatusReason)
	require.Equal(t, "p1", lead.PlaceID)
}
