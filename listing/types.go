package listing

import "time"

// Listing is the common supertype for every listing variant.
type Listing interface {
	ListingType() Type
	Common() *Base
}

type Address struct {
	StreetNumber  string  `json:"streetNumber"`
	Street        string  `json:"street"`
	Suburb        string  `json:"suburb"`
	Municipality  string  `json:"municipality"`
	State         string  `json:"state"`
	CountryIso    string  `json:"countryIsoCode"`
	Postcode      string  `json:"postcode"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	IsStreetShown bool    `json:"isStreetDisplayed"`
}

type Agent struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Order int    `json:"order"`
}

type Media struct {
	URL   string `json:"url"`
	Tag   string `json:"tag"`
	Order int    `json:"order"`
}

// Base holds the fields every variant carries.
type Base struct {
	ID          string    `json:"id" validate:"required"`
	AgentID     string    `json:"agentId" validate:"required"`
	Status      string    `json:"statusType" validate:"omitempty,listingstatus"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Address     *Address  `json:"address"`
	Agents      []Agent   `json:"agents" validate:"dive"`
	Images      []Media   `json:"images"`
	FloorPlans  []Media   `json:"floorPlans"`
	CreatedOn   time.Time `json:"createdOn"`
	UpdatedOn   time.Time `json:"updatedOn"`
}

func (b *Base) Common() *Base { return b }

type SalePricing struct {
	SalePrice     float64    `json:"salePrice" validate:"gte=0"`
	SalePriceText string     `json:"salePriceText"`
	SoldPrice     *float64   `json:"soldPrice,omitempty"`
	SoldOn        *time.Time `json:"soldOn,omitempty"`
	IsUnderOffer  bool       `json:"isUnderOffer"`
}

type RentalPricing struct {
	RentalPrice      float64  `json:"rentalPrice" validate:"gte=0"`
	RentalPriceText  string   `json:"rentalPriceText"`
	PaymentFrequency string   `json:"paymentFrequencyType" validate:"omitempty,paymentfrequency"`
	Bond             *float64 `json:"bond,omitempty"`
}

type BuildingDetails struct {
	Area         float64 `json:"area"`
	EnergyRating float64 `json:"energyRating"`
}

type LandDetails struct {
	Area      float64 `json:"area"`
	Frontage  float64 `json:"frontage"`
	CrossOver string  `json:"crossOver"`
}

type Features struct {
	Bedrooms   int      `json:"bedrooms" validate:"gte=0"`
	Bathrooms  int      `json:"bathrooms" validate:"gte=0"`
	Ensuites   int      `json:"ensuites"`
	CarParking int      `json:"carParking"`
	Tags       []string `json:"tags"`
}

type ResidentialListing struct {
	Base
	PropertyType    string           `json:"propertyType"`
	Pricing         *SalePricing     `json:"pricing"`
	AuctionOn       *time.Time       `json:"auctionOn,omitempty"`
	BuildingDetails *BuildingDetails `json:"buildingDetails"`
	Features        *Features        `json:"features"`
	LandDetails     *LandDetails     `json:"landDetails"`
}

func (*ResidentialListing) ListingType() Type { return Residential }

type RentalListing struct {
	Base
	PropertyType    string           `json:"propertyType"`
	AvailableOn     *time.Time       `json:"availableOn,omitempty"`
	Pricing         *RentalPricing   `json:"pricing"`
	BuildingDetails *BuildingDetails `json:"buildingDetails"`
	Features        *Features        `json:"features"`
	LandDetails     *LandDetails     `json:"landDetails"`
}

func (*RentalListing) ListingType() Type { return Rental }

type LandListing struct {
	Base
	CategoryType string       `json:"categoryType"`
	Pricing      *SalePricing `json:"pricing"`
	AuctionOn    *time.Time   `json:"auctionOn,omitempty"`
	Estate       string       `json:"estate"`
	LandDetails  *LandDetails `json:"landDetails"`
}

func (*LandListing) ListingType() Type { return Land }

type RuralFeatures struct {
	AnnualRainfall   string `json:"annualRainfall"`
	CarryingCapacity string `json:"carryingCapacity"`
	Fencing          string `json:"fencing"`
	Irrigation       string `json:"irrigation"`
	SoilTypes        string `json:"soilTypes"`
}

type RuralListing struct {
	Base
	CategoryType    string           `json:"categoryType"`
	Pricing         *SalePricing     `json:"pricing"`
	AuctionOn       *time.Time       `json:"auctionOn,omitempty"`
	RuralFeatures   *RuralFeatures   `json:"ruralFeatures"`
	BuildingDetails *BuildingDetails `json:"buildingDetails"`
	LandDetails     *LandDetails     `json:"landDetails"`
}

func (*RuralListing) ListingType() Type { return Rural }
