package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"mutualexchange/src/domain/entities"
	"mutualexchange/src/repositories"

	"github.com/go-faker/faker/v4"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert fake people, categories and exchanges",
	RunE:  runSeed,
}

var (
	seedPeople     int
	seedCategories int
	seedExchanges  int
	seedTargets    int
)

var (
	locales     = []string{"en", "pt"}
	targetKinds = []entities.TargetKind{entities.TargetEvent, entities.TargetInvitation, entities.TargetProject}
	urgencies   = []entities.Urgency{entities.UrgencyLow, entities.UrgencyNormal, entities.UrgencyHigh, entities.UrgencyCritical}
)

func init() {
	seedCmd.Flags().IntVar(&seedPeople, "people", 20, "Number of people")
	seedCmd.Flags().IntVar(&seedCategories, "categories", 8, "Number of categories")
	seedCmd.Flags().IntVar(&seedExchanges, "exchanges", 100, "Number of exchanges")
	seedCmd.Flags().IntVar(&seedTargets, "targets", 5, "Distinct targets shared by the exchanges (0 disables targets)")
}

// Os dados vão direto aos repositórios: o seed não dispara matching nem notificações.
func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger()

	client, err := newReadWriteClient()
	if err != nil {
		return err
	}
	defer client.Close()

	directory := repositories.NewDirectoryRepository(client)
	exchanges := repositories.NewExchangeRepository(client)

	people, err := seedPeopleRows(ctx, directory)
	if err != nil {
		return err
	}
	categories, err := seedCategoryRows(ctx, directory)
	if err != nil {
		return err
	}
	targets := fakeTargets(seedTargets)

	start := time.Now()
	for i := 0; i < seedExchanges; i++ {
		ex := fakeExchange(people, categories, targets)
		if err := exchanges.CreateExchange(ctx, ex); err != nil {
			return fmt.Errorf("seed exchange %d: %w", i, err)
		}
	}

	logger.Info("seed finished",
		"people", len(people),
		"categories", len(categories),
		"exchanges", seedExchanges,
		"duration", time.Since(start).String())
	return nil
}

func seedPeopleRows(ctx context.Context, directory *repositories.DirectoryRepository) ([]string, error) {
	ids := make([]string, 0, seedPeople)
	for i := 0; i < seedPeople; i++ {
		p := &entities.Person{
			ID:            faker.UUIDHyphenated(),
			Name:          faker.Name(),
			Email:         fmt.Sprintf("%d.%s", i, faker.Email()),
			Locale:        locales[rand.Intn(len(locales))],
			NotifyByEmail: rand.Intn(4) != 0,
		}
		if err := directory.CreatePerson(ctx, p); err != nil {
			return nil, fmt.Errorf("seed person: %w", err)
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func seedCategoryRows(ctx context.Context, directory *repositories.DirectoryRepository) ([]string, error) {
	ids := make([]string, 0, seedCategories)
	for i := 0; i < seedCategories; i++ {
		c := &entities.Category{
			ID:   faker.UUIDHyphenated(),
			Name: fmt.Sprintf("%s-%d", faker.Word(), i),
		}
		if err := directory.CreateCategory(ctx, c); err != nil {
			return nil, fmt.Errorf("seed category: %w", err)
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func fakeTargets(n int) []*entities.Target {
	targets := make([]*entities.Target, 0, n)
	for i := 0; i < n; i++ {
		targets = append(targets, &entities.Target{
			Kind: targetKinds[rand.Intn(len(targetKinds))],
			ID:   faker.UUIDHyphenated(),
		})
	}
	return targets
}

func fakeExchange(people, categories []string, targets []*entities.Target) *entities.Exchange {
	now := time.Now().UTC()
	kind := entities.KindOffer
	if rand.Intn(2) == 0 {
		kind = entities.KindRequest
	}

	// 1 a 3 categorias, sem repetição
	picked := make([]string, 0, 3)
	for _, idx := range rand.Perm(len(categories))[:1+rand.Intn(min(3, len(categories)))] {
		picked = append(picked, categories[idx])
	}

	var target *entities.Target
	if len(targets) > 0 && rand.Intn(5) != 0 {
		target = targets[rand.Intn(len(targets))]
	}

	return &entities.Exchange{
		ID:          faker.UUIDHyphenated(),
		Kind:        kind,
		Name:        faker.Sentence(),
		Description: faker.Paragraph(),
		Status:      entities.StatusOpen,
		Urgency:     urgencies[rand.Intn(len(urgencies))],
		CreatorID:   people[rand.Intn(len(people))],
		Target:      target,
		CategoryIDs: entities.NormalizeCategoryIDs(picked),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
