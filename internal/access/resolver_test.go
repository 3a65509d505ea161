package access

import (
	"testing"

	"github.com/dinodia/dinodia-core/internal/device"
)

func strptr(s string) *string { return &s }

func testDevices() []device.Device {
	return []device.Device{
		{EntityID: "light.kitchen", AreaName: "Kitchen", Labels: []string{"Light"}},
		{EntityID: "light.bedroom", AreaName: "Bedroom", Labels: []string{"Light", "Rented"}},
		{EntityID: "sensor.hall_motion", AreaName: "Hall", Labels: []string{}},
		{EntityID: "switch.boiler", AreaName: "", Labels: []string{"Boiler"}},
	}
}

func entityIDs(devices []device.Device) []string {
	ids := make([]string, len(devices))
	for i, d := range devices {
		ids[i] = d.EntityID
	}
	return ids
}

func assertVisible(t *testing.T, got []device.Device, want ...string) {
	t.Helper()
	ids := entityIDs(got)
	if len(ids) != len(want) {
		t.Fatalf("visible = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("visible[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestFilterDevices_OwnerSeesAll(t *testing.T) {
	got := FilterDevices(testDevices(), Grant{Role: RoleOwner})
	assertVisible(t, got, "light.kitchen", "light.bedroom", "sensor.hall_motion", "switch.boiler")
}

func TestFilterDevices_NoneSeesNothing(t *testing.T) {
	got := FilterDevices(testDevices(), Grant{Role: RoleNone})
	if len(got) != 0 {
		t.Fatalf("NONE should see nothing, got %v", entityIDs(got))
	}
}

func TestFilterDevices_TenantNeverSeesUnlabeled(t *testing.T) {
	// No restrictions at all, yet the unlabeled motion sensor stays
	// hidden from tenants.
	got := FilterDevices(testDevices(), Grant{Role: RoleTenant})
	assertVisible(t, got, "light.kitchen", "light.bedroom", "switch.boiler")
}

func TestFilterDevices_AreaFilterExactMatch(t *testing.T) {
	got := FilterDevices(testDevices(), Grant{Role: RoleOwner, AreaFilter: strptr("Kitchen")})
	assertVisible(t, got, "light.kitchen")

	// Case-sensitive: "kitchen" is not "Kitchen".
	got = FilterDevices(testDevices(), Grant{Role: RoleOwner, AreaFilter: strptr("kitchen")})
	assertVisible(t, got)
}

func TestFilterDevices_AreaFilterExcludesNoAreaDevices(t *testing.T) {
	// switch.boiler has no area, so it never matches an area filter.
	got := FilterDevices(testDevices(), Grant{Role: RoleOwner, AreaFilter: strptr("Boiler Room")})
	assertVisible(t, got)
}

func TestFilterDevices_LabelFilterIntersection(t *testing.T) {
	got := FilterDevices(testDevices(), Grant{Role: RoleOwner, Labels: []string{"Rented", "Garage"}})
	assertVisible(t, got, "light.bedroom")
}

func TestFilterDevices_AreaAndLabelCombined(t *testing.T) {
	grant := Grant{Role: RoleTenant, AreaFilter: strptr("Bedroom"), Labels: []string{"Light"}}
	got := FilterDevices(testDevices(), grant)
	assertVisible(t, got, "light.bedroom")
}

func TestFilterDevices_TenantKitchenScenario(t *testing.T) {
	devices := []device.Device{
		{EntityID: "light.kitchen", AreaName: "Kitchen", Labels: []string{"Light"}},
		{EntityID: "sensor.hall_motion", AreaName: "Hall", Labels: []string{}},
	}
	grant := Grant{Role: RoleTenant, AreaFilter: strptr("Kitchen")}
	assertVisible(t, FilterDevices(devices, grant), "light.kitchen")
}

func TestFilterDevices_StableOrder(t *testing.T) {
	devices := []device.Device{
		{EntityID: "light.c", Labels: []string{"Light"}},
		{EntityID: "light.a", Labels: []string{"Light"}},
		{EntityID: "light.b", Labels: []string{"Light"}},
	}
	got := FilterDevices(devices, Grant{Role: RoleTenant})
	assertVisible(t, got, "light.c", "light.a", "light.b")
}

func TestFilterDevices_Idempotent(t *testing.T) {
	grant := Grant{Role: RoleTenant, AreaFilter: strptr("Kitchen"), Labels: []string{"Light"}}

	once := FilterDevices(testDevices(), grant)
	twice := FilterDevices(once, grant)
	if len(once) != len(twice) {
		t.Fatalf("filtering is not idempotent: %v then %v", entityIDs(once), entityIDs(twice))
	}
	for i := range once {
		if once[i].EntityID != twice[i].EntityID {
			t.Errorf("entry %d changed: %q then %q", i, once[i].EntityID, twice[i].EntityID)
		}
	}
}

func TestMembershipLabels(t *testing.T) {
	tests := []struct {
		name string
		csv  *string
		want []string
	}{
		{"nil csv", nil, nil},
		{"empty csv", strptr(""), nil},
		{"single", strptr("Light"), []string{"Light"}},
		{"spaced", strptr(" Light , Rented ,"), []string{"Light", "Rented"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Membership{LabelFilterCSV: tt.csv}
			got := m.Labels()
			if len(got) != len(tt.want) {
				t.Fatalf("Labels() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Labels()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
