package source

import (
	"time"

	"github.com/jobpulse/ingestor/internal/config"
	"github.com/jobpulse/ingestor/internal/ingest"
)

// BuildAll instantiates every enabled adapter from configuration, in a
// fixed order. The returned slice order is the report order: greenhouse,
// lever, workable, smartrecruiters, recruitee, adzuna, remoteok,
// weworkremotely, then careers pages.
func BuildAll(cfg config.SourcesConfig, userAgent string, timeout time.Duration) []ingest.Source {
	var sources []ingest.Source

	for _, s := range cfg.Greenhouse {
		if s.Enabled {
			sources = append(sources, NewGreenhouse(s.Board, s.Company, timeout))
		}
	}
	for _, s := range cfg.Lever {
		if s.Enabled {
			sources = append(sources, NewLever(s.Board, s.Company, timeout))
		}
	}
	for _, s := range cfg.Workable {
		if s.Enabled {
			sources = append(sources, NewWorkable(s.Subdomain, s.Company, s.Token, timeout))
		}
	}
	for _, s := range cfg.SmartRecruiters {
		if s.Enabled {
			sources = append(sources, NewSmartRecruiters(s.CompanyID, timeout))
		}
	}
	for _, s := range cfg.Recruitee {
		if s.Enabled {
			sources = append(sources, NewRecruitee(s.Board, s.Company, timeout))
		}
	}
	if cfg.Adzuna.Enabled {
		sources = append(sources, NewAdzuna(cfg.Adzuna.AppID, cfg.Adzuna.AppKey, cfg.Adzuna.Country, cfg.Adzuna.What, timeout))
	}
	if cfg.RemoteOK.Enabled {
		sources = append(sources, NewRemoteOK(timeout))
	}
	if cfg.WeWorkRemotely.Enabled {
		sources = append(sources, NewWeWorkRemotely(timeout))
	}
	for _, s := range cfg.CareersPages {
		if s.Enabled {
			sources = append(sources, NewCareersPage(s.Name, s.Company, s.URL, userAgent, timeout))
		}
	}

	return sources
}
