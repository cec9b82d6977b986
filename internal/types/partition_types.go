package types

import (
	"sort"
	"strings"
)

// PartitionTypes maps the partition type names accepted in a partition table
// description to their type GUID. The table is closed: any other name is rejected.
var PartitionTypes = map[string]string{
	"Unused":     "00000000-0000-0000-0000-000000000000",
	"MBR Scheme": "024DEE41-33E7-11D3-9D69-0008C781F39F",
	"EFI System": "C12A7328-F81F-11D2-BA4B-00A0C93EC93B",
	"efi":        "C12A7328-F81F-11D2-BA4B-00A0C93EC93B",
	"BIOS Boot":  "21686148-6449-6E6F-744E-656564454649",

	"Microsoft Reserved":                      "E3C9E316-0B5C-4DB8-817D-F92DF00215AE",
	"Microsoft Basic Data":                    "EBD0A0A2-B9E5-4433-87C0-68B6B72699C7",
	"Microsoft Logical Disk Manager metadata": "5808C8AA-7E8F-42E0-85D2-E1E90434CFB3",
	"Microsoft Logical Disk Manager data":     "AF9B60A0-1431-4F62-BC68-3311714A69AD",

	"Apple HFS+":           "48465300-0000-11AA-AA11-00306543ECAC",
	"Apple UFS":            "55465300-0000-11AA-AA11-00306543ECAC",
	"Apple RAID":           "52414944-0000-11AA-AA11-00306543ECAC",
	"Apple RAID (offline)": "52414944-5F4F-11AA-AA11-00306543ECAC",
	"Apple Boot":           "426F6F74-0000-11AA-AA11-00306543ECAC",
	"Apple Label":          "4C616265-6C00-11AA-AA11-00306543ECAC",
	"Apple TV Recovery":    "5265636F-7665-11AA-AA11-00306543ECAC",
	"Apple ZFS":            "6A898CC3-1DD2-11B2-99A6-080020736631",

	"Intel Android": "0FC63DAF-8483-4772-8E79-3D69D8477DE4",
	"data":          "0FC63DAF-8483-4772-8E79-3D69D8477DE4",
}

// LookupPartitionType returns the type GUID string for a type name.
func LookupPartitionType(name string) (string, bool) {
	guid, ok := PartitionTypes[name]
	return guid, ok
}

// PartitionTypeName returns the first type name (sorted) whose GUID matches,
// or an empty string when the GUID is not in the table.
func PartitionTypeName(guid string) string {
	names := make([]string, 0, len(PartitionTypes))
	for name := range PartitionTypes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.EqualFold(PartitionTypes[name], guid) {
			return name
		}
	}
	return ""
}
