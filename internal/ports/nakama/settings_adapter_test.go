package nakama

import (
	"context"
	"testing"
	"time"
)

func TestStorageSettings(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name      string
		storage   map[string]string
		wantNight time.Duration
		wantErr   bool
	}{
		{name: "NoDocument", wantNight: time.Duration(cfg.NightDurationSeconds) * time.Second},
		{
			name:      "Override",
			storage:   map[string]string{StorageCollection + "/" + StorageKeySettings: `{"night_duration_seconds": 12}`},
			wantNight: 12 * time.Second,
		},
		{
			name:    "Malformed",
			storage: map[string]string{StorageCollection + "/" + StorageKeySettings: `{"night_duration_seconds": "soon"}`},
			wantErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			adapter := NewStorageSettings(&fakeNakama{storage: test.storage}, noopLogger{}, cfg)
			st, err := adapter.Settings(context.Background())
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Settings error: %v", err)
			}
			if st.NightDuration != test.wantNight {
				t.Fatalf("night = %v, want %v", st.NightDuration, test.wantNight)
			}
			if st.DayDuration != time.Duration(cfg.DayDurationSeconds)*time.Second {
				t.Fatalf("unset fields must keep defaults, day = %v", st.DayDuration)
			}
		})
	}
}
