package finder

import (
	"context"
	"finder/pkg/domain"
	"finder/pkg/storage"
	"fmt"
	"time"
)

// MockKeyword marks the businesses seeded by SeedMock.
const MockKeyword = "mock"

// MockBusinesses returns sample listings covering a healthy platform page,
// a business without website and several sites that may or may not resolve.
func MockBusinesses(fetchedAt time.Time) []domain.Business {
	sample := func(id int, name, address, phone, website string, rating float64, reviews int,
		types ...string,
	) domain.Business {
		return domain.Business{
			PlaceID:         fmt.Sprintf("mock%d", id),
			Name:            name,
			Address:         address,
			Phone:           phone,
			Website:         website,
			Rating:          rating,
			RatingsTotal:    reviews,
			Types:           types,
			BusinessStatus:  "OPERATIONAL",
			KeywordSearched: MockKeyword,
			FetchedAt:       fetchedAt,
		}
	}

	return []domain.Business{
		sample(1, "ร้านอาหาร สมชาย", "123 ถนนสุขุมวิท กรุงเทพ", "02-123-4567",
			"https://somchai-restaurant.com", 4.5, 156, "restaurant", "food"),
		sample(2, "คลินิกหมอสุดา", "456 ถนนพระราม 4 กรุงเทพ", "02-987-6543",
			"https://drsuda-clinic.co.th", 4.8, 89, "doctor", "health"),
		sample(3, "อู่ซ่อมรถ วิชัย", "789 ซอยลาดพร้าว 15 กรุงเทพ", "081-234-5678",
			"https://vichai-garage.com", 4.2, 45, "car_repair"),
		sample(4, "โรงแรม ริเวอร์ไซด์", "111 ถนนช้างคลาน เชียงใหม่", "053-456-789",
			"https://riverside-hotel-cm.com", 3.9, 234, "lodging"),
		sample(5, "ร้านนวดไทย สบาย", "222 ถนนสีลม กรุงเทพ", "02-555-1234",
			"https://sabai-thaimassage.net", 4.6, 312, "spa"),
		sample(6, "ร้านกาแฟ บ้านสวน", "444 ซอยอารีย์ กรุงเทพ", "086-999-0000",
			"https://google.com", 4.7, 567, "cafe"),
		sample(7, "ร้านอาหารไม่มีเว็บ", "555 ถนนพระราม 9 กรุงเทพ", "02-111-2222",
			"", 4.0, 100, "restaurant"),
	}
}

// SeedMock stores the sample businesses so that a run can proceed without
// any Places API call.
func SeedMock(ctx context.Context, store storage.BusinessStorage) error {
	if _, err := store.UpsertBusinesses(ctx, MockBusinesses(time.Now().UTC())...); err != nil {
		return fmt.Errorf("could not seed sample businesses: %w", err)
	}

	return nil
}
