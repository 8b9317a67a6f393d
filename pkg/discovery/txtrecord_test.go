package discovery

import (
	"errors"
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeTXTRoundTrip(t *testing.T) {
	info := &BridgeInfo{Name: "Lobby tablet", Version: 1, AuthRequired: true, SDK: "simulator"}

	strs := TXTRecordsToStrings(EncodeBridgeTXT(info))
	assert.Equal(t, []string{"auth=1", "name=Lobby tablet", "sdk=simulator", "v=1"}, strs)

	decoded, err := DecodeBridgeTXT(StringsToTXTRecords(strs))
	require.NoError(t, err)
	assert.Equal(t, info, decoded)
}

func TestDecodeBridgeTXTErrors(t *testing.T) {
	tests := []struct {
		name string
		txt  TXTRecordMap
		want error
	}{
		{name: "missing version", txt: TXTRecordMap{"name": "x"}, want: ErrMissingRequired},
		{name: "zero version", txt: TXTRecordMap{"v": "0"}, want: ErrInvalidVersion},
		{name: "garbage version", txt: TXTRecordMap{"v": "one"}, want: ErrInvalidVersion},
		{name: "version overflow", txt: TXTRecordMap{"v": "300"}, want: ErrInvalidVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBridgeTXT(tt.txt)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestStringsToTXTRecords(t *testing.T) {
	txt := StringsToTXTRecords([]string{"v=1", "flag", "", "name=a=b", "=orphan"})
	assert.Equal(t, TXTRecordMap{"v": "1", "flag": "", "name": "a=b"}, txt)
}

func TestInstanceName(t *testing.T) {
	_, err := InstanceName("")
	assert.Error(t, err)

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	name, err := InstanceName(string(long))
	require.NoError(t, err)
	assert.Len(t, name, MaxInstanceNameLen)
}

func TestEntryToService(t *testing.T) {
	entry := &zeroconf.ServiceEntry{}
	entry.Instance = "lobby"
	entry.HostName = "lobby.local."
	entry.Port = 7420
	entry.Text = []string{"v=1", "auth=0", "sdk=native"}
	entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.20")}
	entry.AddrIPv6 = []net.IP{net.ParseIP("fe80::1")}

	svc := entryToService(entry)
	require.NotNil(t, svc)
	assert.Equal(t, "lobby", svc.Name, "falls back to instance name")
	assert.Equal(t, uint8(1), svc.Version)
	assert.False(t, svc.AuthRequired)
	assert.Equal(t, "native", svc.SDK)
	assert.Equal(t, []string{"192.168.1.20", "fe80::1"}, svc.Addresses)
	assert.Equal(t, "192.168.1.20:7420", svc.Address())

	entry.Text = []string{"name=no-version"}
	assert.Nil(t, entryToService(entry))
}

func TestBridgeServiceAddress(t *testing.T) {
	v6 := &BridgeService{Port: 7000, Addresses: []string{"fe80::2"}}
	assert.Equal(t, "[fe80::2]:7000", v6.Address())

	hostOnly := &BridgeService{Host: "bridge.local.", Port: 7000}
	assert.Equal(t, "bridge.local.:7000", hostOnly.Address())
}

func TestAddressAggregation(t *testing.T) {
	merged := mergeAddresses([]string{"10.0.0.1"}, []string{"10.0.0.1", "10.0.0.2"})
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, merged)

	left := removeAddresses(merged, []string{"10.0.0.1"})
	assert.Equal(t, []string{"10.0.0.2"}, left)
}

func TestAdvertiserUpdateBeforeAdvertise(t *testing.T) {
	a := NewMDNSAdvertiser(DefaultAdvertiserConfig())
	assert.ErrorIs(t, a.Update(&BridgeInfo{Name: "x", Version: 1}), ErrNotAdvertising)
	assert.NoError(t, a.Stop())
}
