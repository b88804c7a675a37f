package repositories

import (
	"github.com/sukrit1990/cryptobot-ui-sub000/internal/utils"
)

func observeQuery(queryType, repository, status string, seconds float64) {
	utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(seconds)
}

func countQueryError(queryType, repository string) {
	utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
}
