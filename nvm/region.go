package nvm

// Region identifies the active regulatory parameter set of the radio
// protocol. It is persisted as the first field of the mac2 group so that it
// can be recovered independently of the rest of the group.
type Region uint32

// Supported regions.
const (
	RegionAS923 Region = iota
	RegionAU915
	RegionCN470
	RegionCN779
	RegionEU433
	RegionEU868
	RegionIN865
	RegionKR920
	RegionRU864
	RegionUS915
)

func (r Region) String() string {
	switch r {
	case RegionAS923:
		return "AS923"
	case RegionAU915:
		return "AU915"
	case RegionCN470:
		return "CN470"
	case RegionCN779:
		return "CN779"
	case RegionEU433:
		return "EU433"
	case RegionEU868:
		return "EU868"
	case RegionIN865:
		return "IN865"
	case RegionKR920:
		return "KR920"
	case RegionRU864:
		return "RU864"
	case RegionUS915:
		return "US915"
	default:
		return "unknown"
	}
}

// Valid reports whether r is a known region identifier.
func (r Region) Valid() bool {
	return r <= RegionUS915
}
