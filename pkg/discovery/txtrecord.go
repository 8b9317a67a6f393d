package discovery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeBridgeTXT creates the TXT records for a bridge host.
func EncodeBridgeTXT(info *BridgeInfo) TXTRecordMap {
	txt := TXTRecordMap{
		TXTKeyVersion: strconv.FormatUint(uint64(info.Version), 10),
		TXTKeyName:    info.Name,
	}
	if info.AuthRequired {
		txt[TXTKeyAuth] = "1"
	} else {
		txt[TXTKeyAuth] = "0"
	}
	if info.SDK != "" {
		txt[TXTKeySDK] = info.SDK
	}
	return txt
}

// DecodeBridgeTXT parses the TXT records of a bridge host. Version is
// required; a missing name leaves Name empty so the caller can fall back
// to the instance name.
func DecodeBridgeTXT(txt TXTRecordMap) (*BridgeInfo, error) {
	vStr, ok := txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}
	v, err := strconv.ParseUint(vStr, 10, 8)
	if err != nil || v == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, vStr)
	}

	return &BridgeInfo{
		Name:         txt[TXTKeyName],
		Version:      uint8(v),
		AuthRequired: txt[TXTKeyAuth] == "1",
		SDK:          txt[TXTKeySDK],
	}, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, found := strings.Cut(s, "=")
		if k == "" {
			continue
		}
		if !found {
			// Key without value (boolean flag)
			v = ""
		}
		txt[k] = v
	}
	return txt
}

// InstanceName derives a valid mDNS instance name from a display name.
func InstanceName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		name = name[:MaxInstanceNameLen]
	}
	return name, nil
}
