package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Business is a place discovered on the map together with the latest check
// of its published website.
type Business struct {
	PlaceID          string
	Name             string
	Address          string
	Phone            string
	Website          string
	Rating           float64
	RatingsTotal     int
	Types            []string
	BusinessStatus   string
	Lat              float64
	Lng              float64
	KeywordSearched  string
	FetchedAt        time.Time
	WebsiteCheck     *CheckResult
	WebsiteCheckedAt *time.Time
}

// HasWebsite reports whether the business published a non-blank website URL.
func (b Business) HasWebsite() bool {
	return strings.TrimSpace(b.Website) != ""
}

// IsPotentialLead reports whether the business has a website that was
// checked and found dead according to the given status set.
func (b Business) IsPotentialLead(dead StatusSet) bool {
	if !b.HasWebsite() || b.WebsiteCheck == nil {
		return false
	}

	return b.WebsiteCheck.IsDead(dead)
}

// Lead is the sales-facing projection of a business with a broken website.
type Lead struct {
	BusinessName     string  `json:"businessName"`
	BusinessCategory string  `json:"businessCategory"`
	Phone            string  `json:"phone"`
	WebsiteURL       string  `json:"websiteUrl"`
	WebsiteStatus    string  `json:"websiteStatus"`
	StatusReason     string  `json:"statusReason"`
	Address          string  `json:"address"`
	Rating           float64 `json:"rating"`
	RatingsTotal     int     `json:"userRatingsTotal"`
	PlaceID          string  `json:"placeId"`
}

// LeadFromBusiness projects b into a Lead.
func LeadFromBusiness(b Business) Lead {
	lead := Lead{
		BusinessName:     b.Name,
		BusinessCategory: Category(b.Types),
		Phone:            b.Phone,
		WebsiteURL:       b.Website,
		Address:          b.Address,
		Rating:           b.Rating,
		RatingsTotal:     b.RatingsTotal,
		PlaceID:          b.PlaceID,
	}
	if b.WebsiteCheck != nil {
		lead.WebsiteStatus = string(b.WebsiteCheck.Status)
		lead.StatusReason = b.WebsiteCheck.Reason
	}

	return lead
}

// OtherCategory is used when a business carries no place types at all.
const OtherCategory = "อื่นๆ"

var categoriesTH = map[string]string{ //nolint: gochecknoglobals
	"restaurant":         "ร้านอาหาร",
	"cafe":               "คาเฟ่",
	"food":               "อาหาร",
	"bakery":             "เบเกอรี่",
	"bar":                "บาร์",
	"night_club":         "ไนท์คลับ",
	"hotel":              "โรงแรม",
	"lodging":            "ที่พัก",
	"resort":             "รีสอร์ท",
	"spa":                "สปา",
	"beauty_salon":       "ร้านเสริมสวย",
	"hair_care":          "ร้านทำผม",
	"gym":                "ฟิตเนส",
	"health":             "สุขภาพ",
	"hospital":           "โรงพยาบาล",
	"doctor":             "แพทย์/คลินิก",
	"dentist":            "ทันตแพทย์",
	"physiotherapist":    "กายภาพบำบัด",
	"veterinary_care":    "สัตวแพทย์",
	"pharmacy":           "ร้านขายยา",
	"car_repair":         "อู่ซ่อมรถ",
	"car_dealer":         "ตัวแทนจำหน่ายรถ",
	"car_wash":           "ล้างรถ",
	"gas_station":        "ปั๊มน้ำมัน",
	"store":              "ร้านค้า",
	"shopping_mall":      "ห้างสรรพสินค้า",
	"supermarket":        "ซูเปอร์มาร์เก็ต",
	"convenience_store":  "ร้านสะดวกซื้อ",
	"clothing_store":     "ร้านเสื้อผ้า",
	"electronics_store":  "ร้านอิเล็กทรอนิกส์",
	"furniture_store":    "ร้านเฟอร์นิเจอร์",
	"home_goods_store":   "ร้านของใช้ในบ้าน",
	"jewelry_store":      "ร้านเครื่องประดับ",
	"pet_store":          "ร้านสัตว์เลี้ยง",
	"florist":            "ร้านดอกไม้",
	"school":             "โรงเรียน",
	"university":         "มหาวิทยาลัย",
	"library":            "ห้องสมุด",
	"bank":               "ธนาคาร",
	"atm":                "ตู้ ATM",
	"insurance_agency":   "ประกันภัย",
	"lawyer":             "ทนายความ",
	"accounting":         "บัญชี",
	"real_estate_agency": "อสังหาริมทรัพย์",
	"travel_agency":      "ท่องเที่ยว",
	"laundry":            "ซักรีด",
	"moving_company":     "ขนส่ง/ขนย้าย",
	"plumber":            "ช่างประปา",
	"electrician":        "ช่างไฟฟ้า",
	"roofing_contractor": "ช่างหลังคา",
	"painter":            "ช่างทาสี",
	"general_contractor": "รับเหมาก่อสร้าง",
	"point_of_interest":  "สถานที่น่าสนใจ",
	"establishment":      "สถานประกอบการ",
}

// Category resolves the Thai business category for a list of Google place
// types. The first mapped type wins; otherwise the first type is title-cased.
func Category(types []string) string {
	if len(types) == 0 {
		return OtherCategory
	}

	for _, t := range types {
		if c, ok := categoriesTH[t]; ok {
			return c
		}
	}

	return cases.Title(language.English).String(strings.ReplaceAll(types[0], "_", " "))
}
