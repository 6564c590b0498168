package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"tourbook/internal/models"
	"tourbook/internal/utils"
)

// The model types hide passwords and references from JSON, so the data files
// are decoded into these records first.

type tourRecord struct {
	ID              string            `json:"_id"`
	Name            string            `json:"name"`
	Duration        int               `json:"duration"`
	MaxGroupSize    int               `json:"maxGroupSize"`
	Difficulty      string            `json:"difficulty"`
	RatingsAverage  *float64          `json:"ratingsAverage"`
	RatingsQuantity int               `json:"ratingsQuantity"`
	Price           float64           `json:"price"`
	PriceDiscount   *float64          `json:"priceDiscount"`
	Summary         string            `json:"summary"`
	Description     string            `json:"description"`
	ImageCover      string            `json:"imageCover"`
	Images          []string          `json:"images"`
	StartDates      []string          `json:"startDates"`
	SecretTour      bool              `json:"secretTour"`
	StartLocation   *models.Location  `json:"startLocation"`
	Locations       []models.Location `json:"locations"`
	Guides          []string          `json:"guides"`
}

type userRecord struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Active   *bool  `json:"active"`
	Photo    string `json:"photo"`
	Password string `json:"password"`
}

type reviewRecord struct {
	ID     string `json:"_id"`
	Review string `json:"review"`
	Rating int    `json:"rating"`
	User   string `json:"user"`
	Tour   string `json:"tour"`
}

type dataSet struct {
	Tours   []*models.Tour
	Users   []*models.User
	Reviews []*models.Review
}

// loadDataSet reads tours.json, users.json and reviews.json from dir. Missing
// files are skipped; tours-simple.json is used when tours.json is absent.
func loadDataSet(dir string, bcryptCost int, now time.Time) (*dataSet, error) {
	data := &dataSet{}

	var tours []tourRecord
	found, err := readJSON(filepath.Join(dir, "tours.json"), &tours)
	if err == nil && !found {
		_, err = readJSON(filepath.Join(dir, "tours-simple.json"), &tours)
	}
	if err != nil {
		return nil, err
	}
	for i, rec := range tours {
		tour, err := rec.model(now)
		if err != nil {
			return nil, fmt.Errorf("tour %d: %w", i, err)
		}
		data.Tours = append(data.Tours, tour)
	}

	var users []userRecord
	if _, err := readJSON(filepath.Join(dir, "users.json"), &users); err != nil {
		return nil, err
	}
	for i, rec := range users {
		user, err := rec.model(bcryptCost, now)
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", i, err)
		}
		data.Users = append(data.Users, user)
	}

	var reviews []reviewRecord
	if _, err := readJSON(filepath.Join(dir, "reviews.json"), &reviews); err != nil {
		return nil, err
	}
	for i, rec := range reviews {
		review, err := rec.model(now)
		if err != nil {
			return nil, fmt.Errorf("review %d: %w", i, err)
		}
		data.Reviews = append(data.Reviews, review)
	}

	return data, nil
}

func readJSON(path string, dest interface{}) (bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return true, nil
}

func (r tourRecord) model(now time.Time) (*models.Tour, error) {
	id, err := optionalID(r.ID)
	if err != nil {
		return nil, err
	}
	guides, err := objectIDs(r.Guides)
	if err != nil {
		return nil, fmt.Errorf("guides: %w", err)
	}
	startDates := make([]time.Time, 0, len(r.StartDates))
	for _, s := range r.StartDates {
		d, err := parseDate(s)
		if err != nil {
			return nil, fmt.Errorf("startDates: %w", err)
		}
		startDates = append(startDates, d)
	}

	avg := models.DefaultRatingsAverage
	if r.RatingsAverage != nil {
		avg = *r.RatingsAverage
	}
	images := r.Images
	if images == nil {
		images = []string{}
	}
	locations := r.Locations
	if locations == nil {
		locations = []models.Location{}
	}

	return &models.Tour{
		ID:              id,
		Name:            r.Name,
		Slug:            utils.Slugify(r.Name),
		Duration:        r.Duration,
		MaxGroupSize:    r.MaxGroupSize,
		Difficulty:      models.Difficulty(r.Difficulty),
		RatingsAverage:  avg,
		RatingsQuantity: r.RatingsQuantity,
		Price:           r.Price,
		PriceDiscount:   r.PriceDiscount,
		Summary:         strings.TrimSpace(r.Summary),
		Description:     strings.TrimSpace(r.Description),
		ImageCover:      r.ImageCover,
		Images:          images,
		CreatedAt:       now,
		StartDates:      startDates,
		SecretTour:      r.SecretTour,
		StartLocation:   r.StartLocation,
		Locations:       locations,
		Guides:          guides,
	}, nil
}

// model hashes plain passwords. Values that are already bcrypt hashes are
// kept as they are.
func (r userRecord) model(cost int, now time.Time) (*models.User, error) {
	id, err := optionalID(r.ID)
	if err != nil {
		return nil, err
	}
	if r.Password == "" {
		return nil, errors.New("password is required")
	}
	password := r.Password
	if _, err := bcrypt.Cost([]byte(password)); err != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return nil, err
		}
		password = string(hashed)
	}

	role := models.RoleUser
	if r.Role != "" {
		if !models.IsValidRole(r.Role) {
			return nil, fmt.Errorf("invalid role %q", r.Role)
		}
		role = models.Role(r.Role)
	}
	photo := r.Photo
	if photo == "" {
		photo = models.DefaultUserPhoto
	}
	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return &models.User{
		ID:        id,
		Name:      r.Name,
		Email:     strings.ToLower(strings.TrimSpace(r.Email)),
		Photo:     photo,
		Role:      role,
		Password:  password,
		Active:    active,
		CreatedAt: now,
	}, nil
}

func (r reviewRecord) model(now time.Time) (*models.Review, error) {
	id, err := optionalID(r.ID)
	if err != nil {
		return nil, err
	}
	user, err := primitive.ObjectIDFromHex(r.User)
	if err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}
	tour, err := primitive.ObjectIDFromHex(r.Tour)
	if err != nil {
		return nil, fmt.Errorf("tour: %w", err)
	}
	return &models.Review{
		ID:        id,
		Review:    r.Review,
		Rating:    r.Rating,
		CreatedAt: now,
		Tour:      tour,
		User:      user,
	}, nil
}

func optionalID(hex string) (primitive.ObjectID, error) {
	if hex == "" {
		return primitive.NewObjectID(), nil
	}
	return primitive.ObjectIDFromHex(hex)
}

func objectIDs(hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseDate accepts RFC 3339 timestamps and the "2021-06-19,10:00" form
// found in older data files.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02,15:04", s)
}
