// Package aggregate recomputes the derived averages a bootcamp carries.
// The recompute runs in the controller's write path, right after the
// course/review write commits; it is not atomic with that write, and its
// failures are logged but never propagated, so the primary request cannot
// be failed by a stale aggregate.
package aggregate

import (
	"context"
	"database/sql"
	"math"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// RoundCost rounds an average tuition up to the nearest multiple of 10.
func RoundCost(avg float64) int {
	return int(math.Ceil(avg/10)) * 10
}

// costUpdate turns an AVG(tuition) result into the value to store. A NULL
// average means the group is empty; the old value stands.
func costUpdate(avg sql.NullFloat64) (int, bool) {
	if !avg.Valid {
		return 0, false
	}
	return RoundCost(avg.Float64), true
}

// ratingUpdate is the same decision for AVG(rating), stored unrounded.
func ratingUpdate(avg sql.NullFloat64) (float64, bool) {
	return avg.Float64, avg.Valid
}

// RecalcAverageCost recomputes bootcamps.average_cost from the tuition of
// all courses of the bootcamp. When the bootcamp has no courses left the
// update is skipped and the previous value is kept.
func RecalcAverageCost(ctx context.Context, db *sqlx.DB, bootcampID int64) {
	var avg sql.NullFloat64
	err := db.GetContext(ctx, &avg,
		`SELECT AVG(tuition) FROM courses WHERE bootcamp_id=$1`, bootcampID)
	if err != nil {
		logrus.WithField("bootcamp", bootcampID).Errorf("average cost recompute: %v", err)
		return
	}
	cost, ok := costUpdate(avg)
	if !ok {
		// Last course removed; the group is empty and the old value stands.
		return
	}

	_, err = db.ExecContext(ctx,
		`UPDATE bootcamps SET average_cost=$1 WHERE id=$2`, cost, bootcampID)
	if err != nil {
		logrus.WithField("bootcamp", bootcampID).Errorf("average cost update: %v", err)
	}
}

// RecalcAverageRating recomputes bootcamps.average_rating from the ratings
// of all reviews of the bootcamp. The mean is stored unrounded. Empty
// groups are skipped like in RecalcAverageCost.
func RecalcAverageRating(ctx context.Context, db *sqlx.DB, bootcampID int64) {
	var avg sql.NullFloat64
	err := db.GetContext(ctx, &avg,
		`SELECT AVG(rating) FROM reviews WHERE bootcamp_id=$1`, bootcampID)
	if err != nil {
		logrus.WithField("bootcamp", bootcampID).Errorf("average rating recompute: %v", err)
		return
	}
	rating, ok := ratingUpdate(avg)
	if !ok {
		return
	}

	_, err = db.ExecContext(ctx,
		`UPDATE bootcamps SET average_rating=$1 WHERE id=$2`, rating, bootcampID)
	if err != nil {
		logrus.WithField("bootcamp", bootcampID).Errorf("average rating update: %v", err)
	}
}
