package transport

import "testing"

func TestDeviceIDString(t *testing.T) {
	tests := []struct {
		id   DeviceID
		want string
	}{
		{DeviceID{Vendor: 0x1314, Product: 0x1520}, "1314:1520"},
		{DeviceID{Vendor: 0x1314, Product: 0x1521}, "1314:1521"},
		{DeviceID{Vendor: 0x0001, Product: 0x000a}, "0001:000a"},
	}

	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("DeviceID.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestKnownDevicesShareVendor(t *testing.T) {
	if len(KnownDevices) == 0 {
		t.Fatal("KnownDevices is empty")
	}
	for _, d := range KnownDevices {
		if d.Vendor != 0x1314 {
			t.Errorf("unexpected vendor %04x for %s", d.Vendor, d)
		}
	}
}
