package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jobpulse/ingestor/internal/config"
)

func TestBuildAllSkipsDisabledAndKeepsOrder(t *testing.T) {
	t.Parallel()

	cfg := config.SourcesConfig{
		Greenhouse: []config.BoardSource{
			{Enabled: true, Board: "acme", Company: "Acme"},
			{Enabled: false, Board: "ghost", Company: "Ghost"},
		},
		Lever: []config.BoardSource{
			{Enabled: true, Board: "initech", Company: "Initech"},
		},
		Workable: []config.WorkableSource{
			{Enabled: true, Subdomain: "hooli", Company: "Hooli", Token: "tok"},
		},
		SmartRecruiters: []config.CompanyIDSource{
			{Enabled: true, CompanyID: "Umbrella"},
		},
		Recruitee: []config.BoardSource{
			{Enabled: true, Board: "stark", Company: "Stark"},
		},
		Adzuna:         config.AdzunaSource{Enabled: true, AppID: "id", AppKey: "key", Country: "gb", What: "engineer"},
		RemoteOK:       config.ToggleSource{Enabled: true},
		WeWorkRemotely: config.ToggleSource{Enabled: true},
		CareersPages: []config.CareersPageEntry{
			{Enabled: true, Name: "wayne", Company: "Wayne", URL: "https://wayne.example/careers"},
		},
	}

	sources := BuildAll(cfg, "test-agent", time.Second)
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	require.Equal(t, []string{
		"greenhouse:acme",
		"lever:initech",
		"workable:hooli",
		"smartrecruiters:Umbrella",
		"recruitee:stark",
		"adzuna:gb",
		"remoteok",
		"weworkremotely",
		"careers:wayne",
	}, names)
}

func TestBuildAllEmptyConfig(t *testing.T) {
	t.Parallel()

	require.Empty(t, BuildAll(config.SourcesConfig{}, "", time.Second))
}
