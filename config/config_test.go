package config

import "testing"

func TestIsEnabledDefaults(t *testing.T) {
	tests := []struct {
		feature string
		want    bool
	}{
		{FeatureUVC, true},
		{FeatureSDU, true},
		{FeatureRecoAir, true},
		{FeatureReactaway, false},
		{"unknown-feature", false},
	}

	for _, tt := range tests {
		t.Run(tt.feature, func(t *testing.T) {
			if got := IsEnabled(tt.feature); got != tt.want {
				t.Errorf("IsEnabled(%q) = %v, want %v", tt.feature, got, tt.want)
			}
		})
	}
}

func TestIsEnabledEnvironmentOverride(t *testing.T) {
	t.Setenv("FEATURE_UVC", "false")
	if IsEnabled(FeatureUVC) {
		t.Error("FEATURE_UVC=false should disable the feature")
	}

	t.Setenv("FEATURE_REACTAWAY", "true")
	if !IsEnabled(FeatureReactaway) {
		t.Error("FEATURE_REACTAWAY=true should enable the feature")
	}

	t.Setenv("FEATURE_SDU", "not-a-bool")
	if !IsEnabled(FeatureSDU) {
		t.Error("unparseable override should fall back to the default")
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("DATA_DIR", "")
	if got := DataDir(); got != "pb_data" {
		t.Errorf("DataDir() = %q, want pb_data", got)
	}

	t.Setenv("DATA_DIR", "/var/lib/costsheet")
	if got := DataDir(); got != "/var/lib/costsheet" {
		t.Errorf("DataDir() = %q, want the override", got)
	}
}
