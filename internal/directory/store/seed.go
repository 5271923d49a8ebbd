package store

import (
	"context"
	"time"

	"gatehouse/internal/directory/models"
)

// SeedDemo adds one guard and one resident so a fresh in-memory server can be
// exercised without admin calls first.
func SeedDemo(ctx context.Context, s *InMemoryStore, now time.Time) (*models.Guard, *models.Resident) {
	g, _ := models.NewGuard(models.GuardFields{
		Name:    "Demo Guard",
		Email:   "guard@gatehouse.local",
		Contact: "0000000000",
		Shift:   "Day",
	}, now)
	_ = s.CreateGuard(ctx, g)

	r, _ := models.NewResident(models.ResidentFields{
		Name:    "Demo Resident",
		FlatNo:  "A-101",
		Email:   "resident@gatehouse.local",
		Contact: "0000000001",
	}, now)
	_ = s.CreateResident(ctx, r)
	return g, r
}
