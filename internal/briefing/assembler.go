// ABOUTME: Assembles the briefing text injected before every AI turn
// ABOUTME: Pure read of profile, goals and lifestyle history; never cached

package briefing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Bonte-Project/bonte-server/internal/store"
)

// dateFormat renders log dates inside briefing lines.
const dateFormat = "2006-01-02"

// Store defines what the assembler needs from storage.
type Store interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
	GetNutritionGoal(ctx context.Context, userID string) (*store.NutritionGoal, error)
	ListNutritionLogs(ctx context.Context, userID string) ([]*store.NutritionLog, error)
	ListActivityLogs(ctx context.Context, userID string) ([]*store.ActivityLog, error)
	ListSleepLogs(ctx context.Context, userID string) ([]*store.SleepLog, error)
}

// Briefing is the rendered context for one user at one instant. It is never
// persisted or reused: callers assemble a fresh one immediately before use.
type Briefing struct {
	Profile   string
	Goals     string
	Nutrition string
	Activity  string
	Sleep     string
	HasLogs   bool
}

// sections joins the report blocks in their fixed order.
func (b *Briefing) sections() string {
	return strings.Join([]string{b.Profile, b.Goals, b.Nutrition, b.Activity, b.Sleep}, "\n")
}

// System returns the full priming text: system prompt plus user context.
// Used as the first turn when a session is created or rebuilt.
func (b *Briefing) System() string {
	return systemPrompt + "\n\n" + b.sections()
}

// Refresh returns the context-update block sent alongside each message to a
// live session, so the model always sees current data.
func (b *Briefing) Refresh() string {
	return "[SYSTEM UPDATE - Latest User Data]\n" + b.sections()
}

// Assembler builds briefings from storage.
type Assembler struct {
	store Store
}

// NewAssembler creates an Assembler.
func NewAssembler(store Store) *Assembler {
	return &Assembler{store: store}
}

// Assemble reads the user's profile, targets and full lifestyle history and
// renders the briefing. Returns store.ErrNotFound if the user doesn't exist.
func (a *Assembler) Assemble(ctx context.Context, userID string) (*Briefing, error) {
	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}

	goal, err := a.store.GetNutritionGoal(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("loading nutrition goal: %w", err)
	}

	nutrition, err := a.store.ListNutritionLogs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading nutrition logs: %w", err)
	}

	activity, err := a.store.ListActivityLogs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading activity logs: %w", err)
	}

	sleep, err := a.store.ListSleepLogs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading sleep logs: %w", err)
	}

	return &Briefing{
		Profile:   renderProfile(user),
		Goals:     renderGoals(goal),
		Nutrition: renderNutrition(nutrition),
		Activity:  renderActivity(activity),
		Sleep:     renderSleep(sleep),
		HasLogs:   len(nutrition) > 0 || len(activity) > 0,
	}, nil
}

func renderProfile(user *store.User) string {
	var sb strings.Builder
	sb.WriteString("### User Profile:\n")
	if user.Age > 0 {
		fmt.Fprintf(&sb, "- Age: %d\n", user.Age)
	} else {
		sb.WriteString("- Age: Unknown\n")
	}
	if user.HeightCm > 0 {
		fmt.Fprintf(&sb, "- Height: %g cm\n", user.HeightCm)
	} else {
		sb.WriteString("- Height: Unknown\n")
	}
	if user.WeightKg > 0 {
		fmt.Fprintf(&sb, "- Weight: %g kg\n", user.WeightKg)
	} else {
		sb.WriteString("- Weight: Unknown\n")
	}
	fmt.Fprintf(&sb, "- Role: %s", user.Role)
	return sb.String()
}

func renderGoals(goal *store.NutritionGoal) string {
	if goal == nil {
		return "### Nutrition Targets:\nNo specific goals set."
	}
	return fmt.Sprintf(
		"### Current Nutrition Targets:\n- Calories: %d kcal\n- Protein: %dg\n- Fats: %dg\n- Carbs: %dg",
		goal.Calories, goal.Protein, goal.Fat, goal.Carbs)
}

func renderNutrition(logs []*store.NutritionLog) string {
	if len(logs) == 0 {
		return "### Nutrition History:\nNo meals logged yet."
	}
	var sb strings.Builder
	sb.WriteString("### Nutrition History (All Time):")
	for _, log := range logs {
		fmt.Fprintf(&sb, "\n- [%s] %s: %s (%d kcal, P:%dg, F:%dg, C:%dg)",
			log.EatenAt.Format(dateFormat),
			strings.ToUpper(log.MealType),
			log.Name,
			log.Calories, log.Protein, log.Fat, log.Carbs)
	}
	return sb.String()
}

func renderActivity(logs []*store.ActivityLog) string {
	if len(logs) == 0 {
		return "### Activity History:\nNo activities logged yet."
	}
	var sb strings.Builder
	sb.WriteString("### Activity History (All Time):")
	for _, log := range logs {
		fmt.Fprintf(&sb, "\n- [%s] %s: %d mins (Intensity: %s)",
			log.CompletedAt.Format(dateFormat),
			log.ActivityType,
			log.DurationMinutes,
			log.Intensity)
	}
	return sb.String()
}

func renderSleep(logs []*store.SleepLog) string {
	if len(logs) == 0 {
		return "### Sleep History:\nNo sleep logs found."
	}
	var sb strings.Builder
	sb.WriteString("### Sleep History (All Time):")
	for _, log := range logs {
		quality := "?"
		if log.Quality > 0 {
			quality = fmt.Sprintf("%d", log.Quality)
		}
		fmt.Fprintf(&sb, "\n- [%s] Duration: %.1fh, Quality: %s/10",
			log.EndTime.Format(dateFormat),
			log.EndTime.Sub(log.StartTime).Hours(),
			quality)
	}
	return sb.String()
}
