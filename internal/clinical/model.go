// Package clinical holds the nutrition intake assessment: the master data
// catalogs a form selects from, and the per-patient assessment form itself.
package clinical

import (
	"time"

	"github.com/google/uuid"
)

// MasterItem is one selectable catalog entry.
type MasterItem struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// MasterData bundles every catalog the intake form selects from.
type MasterData struct {
	Symptoms    []MasterItem `json:"symptoms"`
	Diseases    []MasterItem `json:"diseases"`
	Allergens   []MasterItem `json:"allergens"`
	Medications []MasterItem `json:"medications"`
	Foods       []MasterItem `json:"foodPreferencesAndAversions"`
}

type FormSymptom struct {
	SymptomID uuid.UUID `json:"symptomId"`
	Name      string    `json:"name"`
	Intensity *int      `json:"intensity,omitempty"`
	Frequency *string   `json:"frequency,omitempty"`
	Duration  *string   `json:"duration,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
}

type FormDisease struct {
	DiseaseID uuid.UUID `json:"diseaseId"`
	Name      string    `json:"name"`
	Notes     *string   `json:"notes,omitempty"`
}

type FormFamilyDisease struct {
	DiseaseID    uuid.UUID `json:"diseaseId"`
	Name         string    `json:"name"`
	FamilyMember *string   `json:"familyMember,omitempty"`
}

type FormMedication struct {
	MedicationID uuid.UUID `json:"medicationId"`
	Name         string    `json:"name"`
	Dosage       *string   `json:"dosage,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
}

type FormAllergen struct {
	AllergenID      uuid.UUID `json:"allergenId"`
	Name            string    `json:"name"`
	ReactionDetails *string   `json:"reactionDetails,omitempty"`
}

type PreferenceType string

const (
	Preferencia PreferenceType = "PREFERENCIA"
	Aversao     PreferenceType = "AVERSAO"
)

type FormFoodPreference struct {
	FoodID uuid.UUID      `json:"foodId"`
	Name   string         `json:"name"`
	Type   PreferenceType `json:"type"`
}

// Form is a patient's clinical intake assessment. Scalar fields are
// pointers so an empty form round-trips without fabricating zero values.
type Form struct {
	ID             uuid.UUID `json:"id"`
	PatientID      uuid.UUID `json:"patientId"`
	AssessmentDate time.Time `json:"assessmentDate"`

	// Anamnesis and goals
	MainGoal            *string `json:"mainGoal,omitempty"`
	PreviousDietHistory *string `json:"previousDietHistory,omitempty"`

	// Signs, symptoms, general health
	IntestinalFunction *string `json:"intestinalFunction,omitempty"`
	SleepQuality       *string `json:"sleepQuality,omitempty"`
	EnergyLevel        *int    `json:"energyLevel,omitempty"`

	// Anthropometrics
	WeightKg             *float64 `json:"weightKg,omitempty"`
	HeightCm             *float64 `json:"heightCm,omitempty"`
	WaistCircumferenceCm *float64 `json:"waistCircumferenceCm,omitempty"`
	HipCircumferenceCm   *float64 `json:"hipCircumferenceCm,omitempty"`
	BodyFatPercentage    *float64 `json:"bodyFatPercentage,omitempty"`
	MuscleMassKg         *float64 `json:"muscleMassKg,omitempty"`

	// Additional health markers
	BloodPressure *string `json:"bloodPressure,omitempty"`

	// Behavioral health
	EmotionalEatingDetails *string `json:"emotionalEatingDetails,omitempty"`
	MainFoodDifficulties   *string `json:"mainFoodDifficulties,omitempty"`

	// Dietary assessment
	FoodRecall24h          *string `json:"foodRecall24h,omitempty"`
	DailyHydrationDetails  *string `json:"dailyHydrationDetails,omitempty"`
	AlcoholConsumption     *string `json:"alcoholConsumption,omitempty"`
	MealTimesAndLocations  *string `json:"mealTimesAndLocations,omitempty"`
	SugarAndSweetenerUse   *string `json:"sugarAndSweetenerUse,omitempty"`
	WaterIntakePerception  *string `json:"waterIntakePerception,omitempty"`

	// Routine and lifestyle
	ProfessionAndWorkRoutine *string `json:"professionAndWorkRoutine,omitempty"`
	PhysicalActivityDetails  *string `json:"physicalActivityDetails,omitempty"`
	SmokingHabits            *string `json:"smokingHabits,omitempty"`

	// Supplementary data
	RecentLabResults *string `json:"recentLabResults,omitempty"`

	// Linked selections
	Symptoms                    []FormSymptom        `json:"symptoms"`
	DiagnosedDiseases           []FormDisease        `json:"diagnosedDiseases"`
	FamilyDiseases              []FormFamilyDisease  `json:"familyDiseases"`
	Medications                 []FormMedication     `json:"medications"`
	Allergens                   []FormAllergen       `json:"allergens"`
	FoodPreferencesAndAversions []FormFoodPreference `json:"foodPreferencesAndAversions"`
}
