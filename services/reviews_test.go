package services

import (
	"testing"

	"bookhaven/models"

	"github.com/stretchr/testify/assert"
)

func ratings(values ...float64) []models.Review {
	reviews := make([]models.Review, len(values))
	for i, v := range values {
		reviews[i].Rating = v
	}
	return reviews
}

func TestAverageRating_Empty(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
	assert.Equal(t, 0.0, AverageRating([]models.Review{}))
}

func TestAverageRating_Mean(t *testing.T) {
	assert.Equal(t, 3.0, AverageRating(ratings(4, 2)))
	assert.Equal(t, 5.0, AverageRating(ratings(5)))
	assert.Equal(t, 2.5, AverageRating(ratings(0, 5)))
}

func TestAverageRating_RoundsToOneDecimal(t *testing.T) {
	// (4+2+5)/3 = 3.666... -> 3.7
	assert.Equal(t, 3.7, AverageRating(ratings(4, 2, 5)))
	// (1+2)/2 = 1.5 stays put
	assert.Equal(t, 1.5, AverageRating(ratings(1, 2)))
	// Ties round half away from zero: (3.5+4)/2 = 3.75 -> 3.8
	assert.Equal(t, 3.8, AverageRating(ratings(3.5, 4)))
	// (1+2+2)/3 = 1.666... -> 1.7
	assert.Equal(t, 1.7, AverageRating(ratings(1, 2, 2)))
}

func TestValidRating(t *testing.T) {
	assert.True(t, validRating(0))
	assert.True(t, validRating(5))
	assert.True(t, validRating(3.5))
	assert.False(t, validRating(-0.1))
	assert.False(t, validRating(5.1))
}
