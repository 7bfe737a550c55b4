package main

import (
	"context"
	"fmt"
	"log"

	"badgeclock/internal/attendance"
	"badgeclock/internal/config"
	"badgeclock/internal/repository"
	"badgeclock/internal/repository/firestore"
	"badgeclock/internal/repository/sqlite"
	"badgeclock/internal/service"
)

// app is the wired service graph shared by the commands
type app struct {
	cfg        *config.Config
	repo       repository.Repository
	eventBus   *service.EventBus
	directory  *service.DirectoryService
	attendance *service.AttendanceService
}

func openRepository(ctx context.Context, cfg *config.Config) (repository.Repository, error) {
	switch cfg.Database.Driver {
	case config.DriverFirestore:
		repo, err := firestore.New(ctx, firestore.Config{
			ProjectID:            cfg.Firestore.ProjectID,
			CredentialsFile:      cfg.Firestore.CredentialsFile,
			EmployeesCollection:  cfg.Firestore.EmployeesCollection,
			AttendanceCollection: cfg.Firestore.AttendanceCollection,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("Firestore opened: project %s", cfg.Firestore.ProjectID)
		return repo, nil

	case config.DriverSQLite:
		repo, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		log.Printf("Database opened: %s", cfg.Database.Path)
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	eventBus := service.NewEventBus()
	snapshots := service.NewSnapshots(repo,
		cfg.Attendance.DirectoryTTL.Duration(),
		cfg.Attendance.RecordsTTL.Duration(),
	)
	engine := attendance.NewEngine(repo,
		attendance.NewRecentScans(cfg.Attendance.RecentScans),
		attendance.WithLocation(loc),
	)

	return &app{
		cfg:        cfg,
		repo:       repo,
		eventBus:   eventBus,
		directory:  service.NewDirectoryService(repo, snapshots, eventBus),
		attendance: service.NewAttendanceService(repo, engine, snapshots, eventBus),
	}, nil
}

func (a *app) Close() error {
	return a.repo.Close()
}
