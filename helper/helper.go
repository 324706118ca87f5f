package helper

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"time"

	"movie-night-backend/data_access"
	"movie-night-backend/models"
)

// SeedMovies loads the movie catalog from the IMDB CSV export into the
// movies collection. It is a no-op when the catalog already has entries.
func SeedMovies(ctx context.Context, movies data_access.MovieRepository, csvPath string) (int, error) {
	count, err := movies.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	parsed, err := ReadMoviesCSV(csvPath)
	if err != nil {
		return 0, err
	}
	if err := movies.InsertMany(ctx, parsed); err != nil {
		return 0, err
	}
	return len(parsed), nil
}

// SeedUsers provisions user records for the given usernames, skipping the
// ones that already exist. Real deployments create users through the auth
// system; this covers local development.
func SeedUsers(ctx context.Context, users data_access.UserRepository, usernames []string) (int, error) {
	created := 0
	for _, username := range usernames {
		existing, err := users.FindByUsername(ctx, username)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		user := &models.User{
			Username:  username,
			Email:     username + "@example.com",
			CreatedAt: time.Now(),
		}
		if err := users.CreateUser(ctx, user); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// ReadMoviesCSV parses the IMDB CSV export into catalog movies. Rows with
// an unparsable rating get no rating, which makes them lose every
// rating-based tie-break.
func ReadMoviesCSV(path string) ([]models.Movie, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	columns := map[string]int{}
	for i, column := range header {
		columns[column] = i
	}
	titleIndex, ok := columns["Title"]
	if !ok {
		return nil, errors.New("title column not found in CSV")
	}

	field := func(row []string, name string) string {
		index, ok := columns[name]
		if !ok || index >= len(row) {
			return ""
		}
		return row[index]
	}

	var movies []models.Movie
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		movie := models.Movie{
			Title:    row[titleIndex],
			Genre:    field(row, "Genre"),
			Director: field(row, "Director"),
			Actors:   field(row, "Actors"),
		}
		if year, err := strconv.Atoi(field(row, "Year")); err == nil {
			movie.Year = year
		}
		if rating, err := strconv.ParseFloat(field(row, "Rating"), 64); err == nil {
			movie.Rating = &rating
		}

		movies = append(movies, movie)
	}

	return movies, nil
}
