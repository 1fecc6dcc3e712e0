package services

// LightingOptions is the list of canopy lighting selections offered in the
// cost sheet dropdowns.
var LightingOptions = []string{
	"LED STRIP L6 Inc DALI",
	"LED STRIP L12 Inc DALI",
	"LED STRIP L18 Inc DALI",
	"Small LED Spots Inc DALI",
	"Large LED Spots Inc DALI",
}

// ConfigurationOptions is the list of canopy mounting configurations.
var ConfigurationOptions = []string{
	"Wall",
	"Island",
	"Single",
	"Double",
	"Corner",
}

// CanopyModels is the list of valid canopy model identifiers. The trailing
// F marks families with a fresh-air supply section; the exception table in
// rules.go suppresses make-up-air figures for the others.
var CanopyModels = []string{
	"KVF",
	"KVI",
	"KVD",
	"UVF",
	"UVI",
	"CMWF",
	"CMWI",
	"KSW",
	"KVX",
	"KVX-M",
}

// FireSystemOptions is the list of fire suppression system selections.
var FireSystemOptions = []string{
	"1 TANK SYSTEM",
	"1 TANK TRAVEL HUB",
	"1 TANK DISTANCE",
	"2 TANK SYSTEM",
	"2 TANK TRAVEL HUB",
	"2 TANK DISTANCE",
	"3 TANK SYSTEM",
	"4 TANK SYSTEM",
	"NOBEL",
	"AMAREX",
	"OTHER",
}

// TankOptions is the list of tank installation selections.
var TankOptions = []string{
	"1 TANK",
	"2 TANK",
	"3 TANK",
	"4 TANK",
	"5 TANK",
	"6 TANK",
}

// tabColors maps a level's position to a stable worksheet tab colour, so
// repeated generation of the same project places identical colours.
var tabColors = []string{
	"92D050", // light green
	"00B0F0", // light blue
	"FF9900", // orange
	"FF00FF", // pink
	"7030A0", // purple
	"FF0000", // red
	"00FF00", // green
	"0070C0", // blue
	"FFC000", // gold
	"00FFFF", // cyan
}

// TabColorForLevel returns the tab colour for a level index, cycling when
// a project has more levels than colours.
func TabColorForLevel(levelIndex int) string {
	if levelIndex < 0 {
		levelIndex = 0
	}
	return tabColors[levelIndex%len(tabColors)]
}
