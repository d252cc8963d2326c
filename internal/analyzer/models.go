package analyzer

import (
	"github.com/anime-shed/vegindex-go/pkg/models"
)

// IndexStatistics and IndexReport are aliases to the shared models
type (
	IndexStatistics = models.IndexStatistics
	IndexReport     = models.IndexReport
)
