package discovery_test

import (
	"context"
	"finder/internal/discovery"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"finder/pkg/places"
	mockplaces "finder/pkg/places/mock"
	"finder/pkg/serrors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	os.Exit(m.Run())
}

func testOptions() discovery.Options {
	return discovery.Options{Radius: 10000, MaxResultsPerKeyword: 60, GridStepKm: 5}
}

func page(token string, ids ...string) places.Page {
	p := places.Page{NextPageToken: token}
	for _, id := range ids {
		p.Places = append(p.Places, places.Place{PlaceID: id})
	}

	return p
}

func expectDetails(client *mockplaces.MockClient, ids ...string) {
	for _, id := range ids {
		client.EXPECT().Details(gomock.Any(), id).Return(&places.Place{
			PlaceID: id,
			Name:    "Business " + id,
			Website: "https://" + id + ".example.com",
		}, nil)
	}
}

type collected struct {
	keywords []string
	found    map[string][]string
}

func (c *collected) collect(_ context.Context, keyword string, found []domain.Business) error {
	if c.found == nil {
		c.found = make(map[string][]string)
	}
	c.keywords = append(c.keywords, keyword)
	for _, b := range found {
		c.found[keyword] = append(c.found[keyword], b.PlaceID)
	}

	return nil
}

func TestSearchCityPaginatesAndDeduplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockplaces.NewMockClient(ctrl)
	chiangMai, _ := discovery.CityCoordinates("chiang mai")

	gomock.InOrder(
		client.EXPECT().NearbySearch(gomock.Any(), places.NearbySearchRequest{
			Location: chiangMai, Radius: 10000, Keyword: "cafe",
		}).Return(page("next", "p1", "p2"), nil),
		client.EXPECT().NearbySearch(gomock.Any(), places.NearbySearchRequest{
			Location: chiangMai, Radius: 10000, Keyword: "cafe", PageToken: "next",
		}).Return(page("", "p3", "p1"), nil),
		client.EXPECT().NearbySearch(gomock.Any(), places.NearbySearchRequest{
			Location: chiangMai, Radius: 10000, Keyword: "ร้านกาแฟ",
		}).Return(page("", "p2", "p4"), nil),
	)
	expectDetails(client, "p1", "p2", "p3", "p4")

	var c collected
	total, err := discovery.New(client, testOptions()).Search(context.Background(), discovery.Query{
		Keywords: []string{"cafe", "ร้านกาแฟ"},
		City:     "Chiang Mai",
	}, c.collect)
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Equal(t, []string{"cafe", "ร้านกาแฟ"}, c.keywords)
	require.Equal(t, []string{"p1", "p2", "p3"}, c.found["cafe"])
	require.Equal(t, []string{"p4"}, c.found["ร้านกาแฟ"])
}

func TestSearchKeepsKeywordAndDetails(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockplaces.NewMockClient(ctrl)

	client.EXPECT().NearbySearch(gomock.Any(), gomock.Any()).Return(page("", "p1"), nil)
	expectDetails(client, "p1")

	var got []domain.Business
	_, err := discovery.New(client, testOptions()).Search(context.Background(),
		discovery.Query{Keywords: []string{"spa"}, City: "phuket"},
		func(_ context.Context, _ string, found []domain.Business) error {
			got = append(got, found...)

			return nil
		})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "spa", got[0].KeywordSearched)
	require.Equal(t, "https://p1.example.com", got[0].Website)
	require.False(t, got[0].FetchedAt.IsZero())
}

func TestSearchCapsResultsPerKeyword(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockplaces.NewMockClient(ctrl)

	client.EXPECT().NearbySearch(gomock.Any(), gomock.Any()).Return(page("next", "p1", "p2", "p3"), nil)
	expectDetails(client, "p1", "p2")

	opts := testOptions()
	opts.MaxResultsPerKeyword = 2

	total, err := discovery.New(client, opts).Search(context.Background(),
		discovery.Query{Keywords: []string{"hotel"}, City: "Bangkok"}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, total)
}

func TestSearchUnknownCityUsesTextSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockplaces.NewMockClient(ctrl)

	client.EXPECT().TextSearch(gomock.Any(), places.TextSearchRequest{Query: "spa in Nan, Thailand"}).
		Return(page("", "p1"), nil)
	client.EXPECT().TextSearch(gomock.Any(), places.TextSearchRequest{Query: "hotel in Nan, Thailand"}).
		Return(page(""), nil)
	expectDetails(client, "p1")

	total, err := discovery.New(client, testOptions()).Search(context.Background(),
		discovery.Query{Keywords: []string{"spa", "hotel"}, City: "Nan"}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestSearchWithoutLocationCoversThailand(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockplaces.NewMockClient(ctrl)

	client.EXPECT().TextSearch(gomock.Any(), places.TextSearchRequest{Query: "clinic in Thailand"}).
		Return(page(""), nil)

	_, err := discovery.New(client, testOptions()).Search(context.Background(),
		discovery.Query{Keywords: []string{"clinic"}}, nil)
	require.NoError(t, err)
}

func TestSearchBoundsVisitsGridPoints(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockplaces.NewMockClient(ctrl)

	bounds := &discovery.Bounds{SouthLat: 13.7, WestLng: 100.5, NorthLat: 13.9, EastLng: 100.6}
	opts := testOptions()
	opts.GridStepKm = 11.1

	var visited []places.LatLng
	client.EXPECT().NearbySearch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req places.NearbySearchRequest) (places.Page, error) {
			visited = append(visited, req.Location)

			return page(""), nil
		}).Times(6)

	_, err := discovery.New(client, opts).Search(context.Background(),
		discovery.Query{Keywords: []string{"bar"}, City: "Bangkok", Bounds: bounds}, nil)
	require.NoError(t, err)
	require.Len(t, visited, 6)
}

func TestSearchSkipsMissingDetails(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockplaces.NewMockClient(ctrl)

	client.EXPECT().NearbySearch(gomock.Any(), gomock.Any()).Return(page("", "gone", "p1"), nil)
	client.EXPECT().Details(gomock.Any(), "gone").Return(nil, serrors.With(serrors.ErrNotFound, "not found"))
	expectDetails(client, "p1")

	total, err := discovery.New(client, testOptions()).Search(context.Background(),
		discovery.Query{Keywords: []string{"bar"}, City: "Bangkok"}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestSearchAbortsOnDeniedKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockplaces.NewMockClient(ctrl)

	client.EXPECT().NearbySearch(gomock.Any(), gomock.Any()).
		Return(places.Page{}, serrors.With(serrors.ErrUnauthorized, "nearbysearch: REQUEST_DENIED"))

	called := false
	_, err := discovery.New(client, testOptions()).Search(context.Background(),
		discovery.Query{Keywords: []string{"bar", "spa"}, City: "Bangkok"},
		func(context.Context, string, []domain.Business) error {
			called = true

			return nil
		})
	require.ErrorIs(t, err, serrors.ErrUnauthorized)
	require.ErrorContains(t, err, `keyword "bar"`)
	require.False(t, called)
}

func TestSearchStopsOnCallbackError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockplaces.NewMockClient(ctrl)

	client.EXPECT().NearbySearch(gomock.Any(), gomock.Any()).Return(page(""), nil)

	_, err := discovery.New(client, testOptions()).Search(context.Background(),
		discovery.Query{Keywords: []string{"bar", "spa"}, City: "Bangkok"},
		func(context.Context, string, []domain.Business) error {
			return serrors.KindOnly(serrors.ErrUnavailable)
		})
	require.ErrorIs(t, err, serrors.ErrUnavailable)
}
