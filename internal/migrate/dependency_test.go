package migrate

import (
	"testing"

	"github.com/veldtdb/veldt/internal/merr"
)

func TestSwappableDependencyResolve(t *testing.T) {
	dep := SwappableDependency{
		SettingKey:    "AUTH_USER_MODEL",
		DefaultApp:    "auth",
		DefaultModel:  "User",
		MigrationName: "0001_initial",
	}

	tests := []struct {
		name    string
		env     *Env
		want    Key
		wantErr bool
	}{
		{
			name: "setting absent falls back to default",
			env:  &Env{},
			want: Key{App: "auth", Name: "0001_initial"},
		},
		{
			name: "empty setting falls back to default",
			env:  &Env{Settings: map[string]string{"AUTH_USER_MODEL": ""}},
			want: Key{App: "auth", Name: "0001_initial"},
		},
		{
			name: "setting binds to its app label",
			env:  &Env{Settings: map[string]string{"AUTH_USER_MODEL": "auth2.User"}},
			want: Key{App: "auth2", Name: "0001_initial"},
		},
		{
			name: "bare app label without model",
			env:  &Env{Settings: map[string]string{"AUTH_USER_MODEL": "accounts"}},
			want: Key{App: "accounts", Name: "0001_initial"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dep.Resolve(tt.env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("no setting and no default is an error", func(t *testing.T) {
		noDefault := SwappableDependency{SettingKey: "AUTH_USER_MODEL", MigrationName: "0001_initial"}
		_, err := noDefault.Resolve(&Env{})
		if !merr.Is(err, merr.ErrUnresolvedSwappable) {
			t.Errorf("expected ErrUnresolvedSwappable, got %v", err)
		}
	})
}

func TestDependencyConditionSatisfied(t *testing.T) {
	env := &Env{
		Settings:      map[string]string{"FLAG_ON": "true", "FLAG_OFF": "false", "FLAG_ZERO": "0"},
		InstalledApps: map[string]bool{"analytics": true},
		Features:      map[string]bool{"audit": true},
	}

	tests := []struct {
		name string
		cond DependencyCondition
		want bool
	}{
		{"installed app", AppInstalled("analytics"), true},
		{"missing app", AppInstalled("billing"), false},
		{"truthy setting", SettingEnabled("FLAG_ON"), true},
		{"false setting", SettingEnabled("FLAG_OFF"), false},
		{"zero setting", SettingEnabled("FLAG_ZERO"), false},
		{"absent setting", SettingEnabled("FLAG_MISSING"), false},
		{"enabled feature", FeatureEnabled("audit"), true},
		{"disabled feature", FeatureEnabled("tracing"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cond.Satisfied(env); got != tt.want {
				t.Errorf("Satisfied() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOptionalDependencyResolve(t *testing.T) {
	dep := OptionalDependency{
		App:           "analytics",
		MigrationName: "0001_initial",
		Condition:     AppInstalled("analytics"),
	}

	if k, ok := dep.Resolve(&Env{InstalledApps: map[string]bool{"analytics": true}}); !ok || k != (Key{App: "analytics", Name: "0001_initial"}) {
		t.Errorf("Resolve() = %v, %v; want edge included", k, ok)
	}
	if _, ok := dep.Resolve(&Env{}); ok {
		t.Error("unsatisfied condition must drop the edge without error")
	}
}
