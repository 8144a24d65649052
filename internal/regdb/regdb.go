/*
Copyright (c) The wisun-br-linux Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package regdb is the Wi-SUN FAN regulatory database: static PHY
// mode and channel plan tables keyed by regulatory domain, letting the
// border router translate a configured (domain, operating class /
// channel plan ID) pair into concrete channel spacing and count.
package regdb

// Modulation identifies a PHY's modulation scheme.
type Modulation int

const (
	ModulationUndefined Modulation = iota
	Modulation2FSK
	ModulationOFDM
	ModulationOQPSK
)

// PHYParams is one row of the Wi-SUN PHY mode table (FAN 1.1 §6.3.2.1).
type PHYParams struct {
	RailPHYModeID  int
	PHYModeID      int
	Modulation     Modulation
	DatarateBps    int
	FSKModeID      int
	OFDMMCS        int
	OFDMOption     int
	FECEnabled     bool
	OQPSKChipRate  int
	OQPSKRateMode  int
}

// PHYParamsTable is the full set of Wi-SUN PHY modes, transcribed from
// the regulatory database's phy_params_table.
var PHYParamsTable = []PHYParams{
	{RailPHYModeID: 1, PHYModeID: 0x01, Modulation: Modulation2FSK, DatarateBps: 50000},
	{RailPHYModeID: 2, PHYModeID: 0x02, Modulation: Modulation2FSK, DatarateBps: 50000},
	{RailPHYModeID: 3, PHYModeID: 0x03, Modulation: Modulation2FSK, DatarateBps: 100000},
	{RailPHYModeID: 4, PHYModeID: 0x04, Modulation: Modulation2FSK, DatarateBps: 100000},
	{RailPHYModeID: 5, PHYModeID: 0x05, Modulation: Modulation2FSK, DatarateBps: 150000},
	{RailPHYModeID: 6, PHYModeID: 0x06, Modulation: Modulation2FSK, DatarateBps: 200000},
	{RailPHYModeID: 7, PHYModeID: 0x07, Modulation: Modulation2FSK, DatarateBps: 200000},
	{RailPHYModeID: 8, PHYModeID: 0x08, Modulation: Modulation2FSK, DatarateBps: 300000},
	{RailPHYModeID: 17, PHYModeID: 0x11, Modulation: Modulation2FSK, DatarateBps: 50000, FECEnabled: true},
	{RailPHYModeID: 18, PHYModeID: 0x12, Modulation: Modulation2FSK, DatarateBps: 50000, FECEnabled: true},
	{RailPHYModeID: 19, PHYModeID: 0x13, Modulation: Modulation2FSK, DatarateBps: 100000, FECEnabled: true},
	{RailPHYModeID: 20, PHYModeID: 0x14, Modulation: Modulation2FSK, DatarateBps: 100000, FECEnabled: true},
	{RailPHYModeID: 21, PHYModeID: 0x15, Modulation: Modulation2FSK, DatarateBps: 150000, FECEnabled: true},
	{RailPHYModeID: 22, PHYModeID: 0x16, Modulation: Modulation2FSK, DatarateBps: 200000, FECEnabled: true},
	{RailPHYModeID: 23, PHYModeID: 0x17, Modulation: Modulation2FSK, DatarateBps: 200000, FECEnabled: true},
	{RailPHYModeID: 24, PHYModeID: 0x18, Modulation: Modulation2FSK, DatarateBps: 300000, FECEnabled: true},
	{RailPHYModeID: 32, PHYModeID: 0x22, Modulation: ModulationOFDM, DatarateBps: 400000, OFDMMCS: 2, OFDMOption: 1},
	{RailPHYModeID: 32, PHYModeID: 0x23, Modulation: ModulationOFDM, DatarateBps: 800000, OFDMMCS: 3, OFDMOption: 1},
	{RailPHYModeID: 32, PHYModeID: 0x24, Modulation: ModulationOFDM, DatarateBps: 1200000, OFDMMCS: 4, OFDMOption: 1},
	{RailPHYModeID: 32, PHYModeID: 0x25, Modulation: ModulationOFDM, DatarateBps: 1600000, OFDMMCS: 5, OFDMOption: 1},
	{RailPHYModeID: 32, PHYModeID: 0x26, Modulation: ModulationOFDM, DatarateBps: 2400000, OFDMMCS: 6, OFDMOption: 1},
	{RailPHYModeID: 48, PHYModeID: 0x33, Modulation: ModulationOFDM, DatarateBps: 400000, OFDMMCS: 3, OFDMOption: 2},
	{RailPHYModeID: 48, PHYModeID: 0x34, Modulation: ModulationOFDM, DatarateBps: 600000, OFDMMCS: 4, OFDMOption: 2},
	{RailPHYModeID: 48, PHYModeID: 0x35, Modulation: ModulationOFDM, DatarateBps: 800000, OFDMMCS: 5, OFDMOption: 2},
	{RailPHYModeID: 48, PHYModeID: 0x36, Modulation: ModulationOFDM, DatarateBps: 1200000, OFDMMCS: 6, OFDMOption: 2},
	{RailPHYModeID: 64, PHYModeID: 0x44, Modulation: ModulationOFDM, DatarateBps: 300000, OFDMMCS: 4, OFDMOption: 3},
	{RailPHYModeID: 64, PHYModeID: 0x45, Modulation: ModulationOFDM, DatarateBps: 400000, OFDMMCS: 5, OFDMOption: 3},
	{RailPHYModeID: 64, PHYModeID: 0x46, Modulation: ModulationOFDM, DatarateBps: 600000, OFDMMCS: 6, OFDMOption: 3},
	{RailPHYModeID: 80, PHYModeID: 0x54, Modulation: ModulationOFDM, DatarateBps: 150000, OFDMMCS: 4, OFDMOption: 4},
	{RailPHYModeID: 80, PHYModeID: 0x55, Modulation: ModulationOFDM, DatarateBps: 200000, OFDMMCS: 5, OFDMOption: 4},
	{RailPHYModeID: 80, PHYModeID: 0x56, Modulation: ModulationOFDM, DatarateBps: 300000, OFDMMCS: 6, OFDMOption: 4},
}

// RegionalRegulation distinguishes generic and ARIB-constrained
// (Japan) domains.
type RegionalRegulation int

const (
	RegionalNone RegionalRegulation = iota
	RegionalARIB
)

// ChanParams is one row of the Wi-SUN channel plan table (FAN 1.1
// §6.3.2.3), identifying a regulatory domain's allowed channel
// spacing, count, and PHY modes for one operating class or channel
// plan ID.
type ChanParams struct {
	RegDomain        string
	OpClass          int
	Regional         RegionalRegulation
	ChanPlanID       int
	Chan0FreqHz      int
	ChanSpacingHz    int
	ChanCount        int
	ChanCountValid   int
	ValidPHYModeIDs  []int
	ChanAllowed      string
}

// ChanParamsTable is a grounded subset of the full regulatory domain
// table, covering the domains a border router deployment is most
// likely to target. Extending to further domains is a matter of
// transcribing more rows in the same shape; the lookup functions below
// need no changes.
var ChanParamsTable = []ChanParams{
	{RegDomain: "NA", OpClass: 1, Chan0FreqHz: 902200000, ChanSpacingHz: 200000, ChanCount: 129, ChanCountValid: 129, ValidPHYModeIDs: []int{0x02, 0x03, 0x12, 0x13}},
	{RegDomain: "NA", OpClass: 2, Chan0FreqHz: 902400000, ChanSpacingHz: 400000, ChanCount: 64, ChanCountValid: 64, ValidPHYModeIDs: []int{0x05, 0x06, 0x15, 0x16}},
	{RegDomain: "NA", OpClass: 3, Chan0FreqHz: 902600000, ChanSpacingHz: 600000, ChanCount: 42, ChanCountValid: 42, ValidPHYModeIDs: []int{0x08, 0x18}},
	{RegDomain: "NA", ChanPlanID: 4, Chan0FreqHz: 902800000, ChanSpacingHz: 800000, ChanCount: 32, ChanCountValid: 32, ValidPHYModeIDs: []int{0x33, 0x34, 0x35, 0x36}},
	{RegDomain: "NA", ChanPlanID: 5, Chan0FreqHz: 903200000, ChanSpacingHz: 1200000, ChanCount: 21, ChanCountValid: 21, ValidPHYModeIDs: []int{0x44, 0x45, 0x46}},
	{RegDomain: "EU", OpClass: 1, Chan0FreqHz: 863100000, ChanSpacingHz: 100000, ChanCount: 69, ChanCountValid: 69, ValidPHYModeIDs: []int{0x01}},
	{RegDomain: "EU", OpClass: 2, Chan0FreqHz: 863100000, ChanSpacingHz: 200000, ChanCount: 35, ChanCountValid: 35, ValidPHYModeIDs: []int{0x03, 0x05}},
	{RegDomain: "EU", OpClass: 3, Chan0FreqHz: 870100000, ChanSpacingHz: 100000, ChanCount: 55, ChanCountValid: 55, ValidPHYModeIDs: []int{0x01, 0x11}},
	{RegDomain: "EU", OpClass: 4, Chan0FreqHz: 870200000, ChanSpacingHz: 200000, ChanCount: 27, ChanCountValid: 27, ValidPHYModeIDs: []int{0x03, 0x05, 0x13, 0x15}},
	{RegDomain: "JP", OpClass: 1, Regional: RegionalARIB, Chan0FreqHz: 920600000, ChanSpacingHz: 200000, ChanCount: 38, ChanCountValid: 38, ValidPHYModeIDs: []int{0x02}},
	{RegDomain: "JP", OpClass: 2, Regional: RegionalARIB, Chan0FreqHz: 920900000, ChanSpacingHz: 400000, ChanCount: 18, ChanCountValid: 18, ValidPHYModeIDs: []int{0x04, 0x05}},
	{RegDomain: "JP", OpClass: 3, Regional: RegionalARIB, Chan0FreqHz: 920800000, ChanSpacingHz: 600000, ChanCount: 12, ChanCountValid: 12, ValidPHYModeIDs: []int{0x07, 0x08}},
	{RegDomain: "CN", OpClass: 1, Chan0FreqHz: 470200000, ChanSpacingHz: 200000, ChanCount: 199, ChanCountValid: 199, ValidPHYModeIDs: []int{0x02, 0x03, 0x05, 0x12, 0x13, 0x15}},
	{RegDomain: "CN", OpClass: 2, Chan0FreqHz: 779200000, ChanSpacingHz: 200000, ChanCount: 39, ChanCountValid: 39, ValidPHYModeIDs: []int{0x02, 0x03}},
	{RegDomain: "CN", OpClass: 3, Chan0FreqHz: 779400000, ChanSpacingHz: 400000, ChanCount: 19, ChanCountValid: 19, ValidPHYModeIDs: []int{0x05, 0x06, 0x08}},
	{RegDomain: "KR", OpClass: 1, Chan0FreqHz: 917100000, ChanSpacingHz: 200000, ChanCount: 32, ChanCountValid: 32, ValidPHYModeIDs: []int{0x02, 0x03, 0x12, 0x13}},
	{RegDomain: "KR", OpClass: 2, Chan0FreqHz: 917300000, ChanSpacingHz: 400000, ChanCount: 16, ChanCountValid: 16, ValidPHYModeIDs: []int{0x05, 0x06, 0x08, 0x15, 0x16, 0x18}},
	{RegDomain: "HK", OpClass: 1, Chan0FreqHz: 920200000, ChanSpacingHz: 200000, ChanCount: 24, ChanCountValid: 24, ValidPHYModeIDs: []int{0x02, 0x03, 0x12, 0x13}},
	{RegDomain: "HK", OpClass: 2, Chan0FreqHz: 920400000, ChanSpacingHz: 400000, ChanCount: 12, ChanCountValid: 12, ValidPHYModeIDs: []int{0x05, 0x06, 0x08, 0x15, 0x16, 0x18}},
	{RegDomain: "WW", OpClass: 1, Chan0FreqHz: 2400200000, ChanSpacingHz: 200000, ChanCount: 416, ChanCountValid: 416, ValidPHYModeIDs: []int{0x02, 0x03, 0x12, 0x13}},
	{RegDomain: "WW", OpClass: 2, Chan0FreqHz: 2400400000, ChanSpacingHz: 400000, ChanCount: 207, ChanCountValid: 207, ValidPHYModeIDs: []int{0x05, 0x06, 0x08, 0x15, 0x16, 0x18}},
}

// chanSpacingIDs maps a channel spacing in Hz to the FAN 1.1 enumerated
// channel spacing ID.
var chanSpacingIDs = map[int]int{
	100000:  0,
	200000:  1,
	250000:  2,
	400000:  3,
	600000:  4,
	800000:  5,
	1200000: 6,
}

// ChanSpacingUndef is returned by ChanSpacingID for an unrecognised
// spacing value.
const ChanSpacingUndef = -1

// PHYParamsFromID looks up a PHY mode row by its phy_mode_id.
func PHYParamsFromID(phyModeID int) (PHYParams, bool) {
	for _, p := range PHYParamsTable {
		if p.PHYModeID == phyModeID {
			return p, true
		}
	}
	return PHYParams{}, false
}

// ChanParamsByOpClass looks up a FAN 1.0-style row by regulatory
// domain and operating class.
func ChanParamsByOpClass(regDomain string, opClass int) (ChanParams, bool) {
	if opClass == 0 {
		return ChanParams{}, false
	}
	for _, c := range ChanParamsTable {
		if c.RegDomain == regDomain && c.OpClass == opClass {
			return c, true
		}
	}
	return ChanParams{}, false
}

// ChanParamsByPlanID looks up a FAN 1.1-style row by regulatory domain
// and channel plan ID.
func ChanParamsByPlanID(regDomain string, chanPlanID int) (ChanParams, bool) {
	if chanPlanID == 0 {
		return ChanParams{}, false
	}
	for _, c := range ChanParamsTable {
		if c.RegDomain == regDomain && c.ChanPlanID == chanPlanID {
			return c, true
		}
	}
	return ChanParams{}, false
}

// ChanParamsResolve resolves (domain, chanPlanID, opClass) to a row, trying
// the FAN 1.1 channel-plan-ID form first and falling back to the FAN
// 1.0 operating-class form, mirroring ws_regdb_chan_params.
func ChanParamsResolve(regDomain string, chanPlanID, opClass int) (ChanParams, bool) {
	if c, ok := ChanParamsByPlanID(regDomain, chanPlanID); ok {
		return c, true
	}
	return ChanParamsByOpClass(regDomain, opClass)
}

// ChanSpacingID maps a spacing value in Hz to its enumerated ID, or
// ChanSpacingUndef if unrecognised.
func ChanSpacingID(hz int) int {
	if id, ok := chanSpacingIDs[hz]; ok {
		return id
	}
	return ChanSpacingUndef
}

// IsStd reports whether phyModeID is a standard Wi-SUN PHY mode for
// regDomain (i.e. listed in that domain's valid PHY modes across any
// of its channel plans).
func IsStd(regDomain string, phyModeID int) bool {
	for _, c := range ChanParamsTable {
		if c.RegDomain != regDomain {
			continue
		}
		for _, id := range c.ValidPHYModeIDs {
			if id == phyModeID {
				return true
			}
		}
	}
	return false
}

// CheckPHYChanCompat reports whether phy is one of chan's valid PHY
// modes.
func CheckPHYChanCompat(phy PHYParams, chan_ ChanParams) bool {
	for _, id := range chan_.ValidPHYModeIDs {
		if id == phy.PHYModeID {
			return true
		}
	}
	return false
}
