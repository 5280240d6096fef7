package domain

// DefaultProfileName is the built-in profile. It is never written to or
// deleted from a ProfileStore.
const DefaultProfileName = "Default"

// Profile holds a trader's skills, standings and preferred order ranges.
type Profile struct {
	CharID              uint64     `json:"charId"`
	ProfileName         string     `json:"profileName" validate:"required,max=64,profilename"`
	MarginThreshold     float64    `json:"marginThreshold" validate:"gte=0"`
	MinimumThreshold    float64    `json:"minimumThreshold" validate:"gte=0"`
	Accounting          uint8      `json:"accounting" validate:"lte=5"`
	BrokerRelations     uint8      `json:"brokerRelations" validate:"lte=5"`
	FactionStanding     float64    `json:"factionStanding" validate:"gte=-10,lte=10"`
	CorpStanding        float64    `json:"corpStanding" validate:"gte=-10,lte=10"`
	UseBuyCustomBroker  bool       `json:"useBuyCustomBroker"`
	BuyCustomBroker     float64    `json:"buyCustomBroker" validate:"gte=0,lte=1"`
	UseSellCustomBroker bool       `json:"useSellCustomBroker"`
	SellCustomBroker    float64    `json:"sellCustomBroker" validate:"gte=0,lte=1"`
	BuyRange            OrderRange `json:"buyRange" validate:"lte=4"`
	SellRange           OrderRange `json:"sellRange" validate:"lte=4"`
}

// DefaultProfile returns the built-in values under the given name.
func DefaultProfile(name string) Profile {
	return Profile{
		ProfileName:      name,
		MarginThreshold:  0.1,
		MinimumThreshold: 0.02,
		Accounting:       5,
		BrokerRelations:  5,
		BuyCustomBroker:  0.01,
		SellCustomBroker: 0.01,
		BuyRange:         RangeHub,
		SellRange:        RangeHub,
	}
}

// Validate checks field bounds and that the name is usable as a file name.
func (p Profile) Validate() error {
	return validateStruct(p, ErrInvalidProfile)
}

// AutoCopy modes understood by the UI.
const (
	AutoCopySell   = "sell"
	AutoCopyBuy    = "buy"
	AutoCopySell95 = "sell95"
	AutoCopyBuy95  = "buy95"
)

// AppSettings is the persisted UI state.
type AppSettings struct {
	SelectedProfile string  `json:"selectedProfile" validate:"required,profilename"`
	AutoCopyEnabled bool    `json:"autoCopyEnabled"`
	AutoCopyMode    string  `json:"autoCopyMode" validate:"oneof=sell buy sell95 buy95"`
	WindowX         *int32  `json:"windowX,omitempty"`
	WindowY         *int32  `json:"windowY,omitempty"`
	WindowWidth     *uint32 `json:"windowWidth,omitempty"`
	WindowHeight    *uint32 `json:"windowHeight,omitempty"`
}

// DefaultSettings returns the settings used when none have been saved.
func DefaultSettings() AppSettings {
	return AppSettings{
		SelectedProfile: DefaultProfileName,
		AutoCopyMode:    AutoCopySell,
	}
}

// Validate checks the selected profile name and the auto-copy mode.
func (s AppSettings) Validate() error {
	return validateStruct(s, ErrInvalidSettings)
}
