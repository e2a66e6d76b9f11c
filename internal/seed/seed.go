package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appModels "github.com/vuhoang/defcom/internal/app/models"
	appRepos "github.com/vuhoang/defcom/internal/app/repositories"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
)

// CreateDefaultData creates the specialty tag catalog plus a handful of
// lecturers and approved topics if they don't exist, so a fresh database is
// immediately usable.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	tagRepo := appRepos.NewTagRepository(dbPool)
	lecturerRepo := appRepos.NewLecturerRepository(dbPool)
	topicRepo := appRepos.NewTopicRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (tags/lecturers/topics)...")
	var finalErr error // To collect potential errors without stopping the process

	// --- Specialty tag catalog --- //
	tags := []*appModels.Tag{
		{Code: "AI", Name: "Artificial Intelligence"},
		{Code: "SE", Name: "Software Engineering"},
		{Code: "NET", Name: "Computer Networks"},
		{Code: "IS", Name: "Information Systems"},
		{Code: "SEC", Name: "Information Security"},
	}
	for _, tag := range tags {
		if err := tagRepo.Create(ctx, tag); err != nil {
			lgr.Error().Err(err).Str("tag", tag.Code).Msg("Error creating specialty tag")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Lecturers --- //
	lecturers := []*appModels.Lecturer{
		{Code: "GV001", FullName: "Nguyen Van An", Rank: appModels.RankProfessor, Tags: []string{"AI", "SE"}, DefenseQuota: 5},
		{Code: "GV002", FullName: "Tran Thi Binh", Rank: appModels.RankAssociateProfessor, Tags: []string{"AI"}, DefenseQuota: 4},
		{Code: "GV003", FullName: "Le Van Cuong", Rank: appModels.RankPhD, Tags: []string{"NET", "SEC"}, DefenseQuota: 4},
		{Code: "GV004", FullName: "Pham Thi Dung", Rank: appModels.RankPhD, Tags: []string{"SE", "IS"}, DefenseQuota: 3},
		{Code: "GV005", FullName: "Hoang Van Em", Rank: appModels.RankPhD, Tags: []string{"IS"}, DefenseQuota: 3},
		{Code: "GV006", FullName: "Vu Thi Phuong", Rank: appModels.RankMaster, Tags: []string{"SE"}, DefenseQuota: 2},
	}
	for _, lecturer := range lecturers {
		_, err := lecturerRepo.GetByCode(ctx, lecturer.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrLecturerNotFound) {
			lgr.Error().Err(err).Str("lecturer", lecturer.Code).Msg("Error checking lecturer")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if err := lecturerRepo.Create(ctx, lecturer); err != nil {
			lgr.Error().Err(err).Str("lecturer", lecturer.Code).Msg("Error creating lecturer")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Approved topics --- //
	topics := []*appModels.Topic{
		{Code: "DT001", Title: "Deep Learning for Vietnamese Text Classification", Status: appModels.TopicApproved, SupervisorCode: "GV002", Tags: []string{"AI"}},
		{Code: "DT002", Title: "Microservice Migration Patterns for Legacy Systems", Status: appModels.TopicApproved, SupervisorCode: "GV004", Tags: []string{"SE"}},
		{Code: "DT003", Title: "Intrusion Detection in Campus Networks", Status: appModels.TopicApproved, SupervisorCode: "GV003", Tags: []string{"NET", "SEC"}},
		{Code: "DT004", Title: "Student Information System Data Warehouse", Status: appModels.TopicApproved, SupervisorCode: "GV005", Tags: []string{"IS"}},
	}
	for _, topic := range topics {
		_, err := topicRepo.GetByCode(ctx, topic.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrTopicNotFound) {
			lgr.Error().Err(err).Str("topic", topic.Code).Msg("Error checking topic")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if err := topicRepo.Create(ctx, topic); err != nil {
			lgr.Error().Err(err).Str("topic", topic.Code).Msg("Error creating topic")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Msg("Default data check complete.")
	return finalErr
}
