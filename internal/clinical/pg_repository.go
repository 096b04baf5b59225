package clinical

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) listMasterItems(ctx context.Context, table string) ([]MasterItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM `+table+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MasterItem
	for rows.Next() {
		var item MasterItem
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *PgRepository) GetMasterData(ctx context.Context) (*MasterData, error) {
	var md MasterData
	var err error

	if md.Symptoms, err = r.listMasterItems(ctx, "symptoms"); err != nil {
		return nil, err
	}
	if md.Diseases, err = r.listMasterItems(ctx, "diseases"); err != nil {
		return nil, err
	}
	if md.Allergens, err = r.listMasterItems(ctx, "allergens"); err != nil {
		return nil, err
	}
	if md.Medications, err = r.listMasterItems(ctx, "medications_supplements"); err != nil {
		return nil, err
	}
	if md.Foods, err = r.listMasterItems(ctx, "foods"); err != nil {
		return nil, err
	}
	return &md, nil
}

const formColumns = `
	id, patient_id, assessment_date, main_goal, previous_diet_history,
	intestinal_function, sleep_quality, energy_level,
	weight_kg, height_cm, waist_circumference_cm, hip_circumference_cm,
	body_fat_percentage, muscle_mass_kg, blood_pressure,
	emotional_eating_details, main_food_difficulties,
	food_recall_24h, daily_hydration_details, alcohol_consumption,
	meal_times_and_locations, sugar_and_sweetener_use, water_intake_perception,
	profession_and_work_routine, physical_activity_details, smoking_habits,
	recent_lab_results`

func (r *PgRepository) GetFormByPatient(ctx context.Context, patientID uuid.UUID) (*Form, error) {
	var f Form
	err := r.pool.QueryRow(ctx, `
		SELECT`+formColumns+`
		FROM clinical_forms
		WHERE patient_id = $1
	`, patientID).Scan(
		&f.ID, &f.PatientID, &f.AssessmentDate, &f.MainGoal, &f.PreviousDietHistory,
		&f.IntestinalFunction, &f.SleepQuality, &f.EnergyLevel,
		&f.WeightKg, &f.HeightCm, &f.WaistCircumferenceCm, &f.HipCircumferenceCm,
		&f.BodyFatPercentage, &f.MuscleMassKg, &f.BloodPressure,
		&f.EmotionalEatingDetails, &f.MainFoodDifficulties,
		&f.FoodRecall24h, &f.DailyHydrationDetails, &f.AlcoholConsumption,
		&f.MealTimesAndLocations, &f.SugarAndSweetenerUse, &f.WaterIntakePerception,
		&f.ProfessionAndWorkRoutine, &f.PhysicalActivityDetails, &f.SmokingHabits,
		&f.RecentLabResults,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}

	if err := r.loadLinks(ctx, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PgRepository) loadLinks(ctx context.Context, f *Form) error {
	rows, err := r.pool.Query(ctx, `
		SELECT fs.symptom_id, s.name, fs.intensity, fs.frequency, fs.duration, fs.notes
		FROM clinical_form_symptoms fs
		JOIN symptoms s ON s.id = fs.symptom_id
		WHERE fs.form_id = $1
	`, f.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var s FormSymptom
		if err := rows.Scan(&s.SymptomID, &s.Name, &s.Intensity, &s.Frequency, &s.Duration, &s.Notes); err != nil {
			rows.Close()
			return err
		}
		f.Symptoms = append(f.Symptoms, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT fd.disease_id, d.name, fd.notes
		FROM clinical_form_diseases fd
		JOIN diseases d ON d.id = fd.disease_id
		WHERE fd.form_id = $1
	`, f.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var d FormDisease
		if err := rows.Scan(&d.DiseaseID, &d.Name, &d.Notes); err != nil {
			rows.Close()
			return err
		}
		f.DiagnosedDiseases = append(f.DiagnosedDiseases, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT fd.disease_id, d.name, fd.family_member
		FROM clinical_form_family_diseases fd
		JOIN diseases d ON d.id = fd.disease_id
		WHERE fd.form_id = $1
	`, f.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var d FormFamilyDisease
		if err := rows.Scan(&d.DiseaseID, &d.Name, &d.FamilyMember); err != nil {
			rows.Close()
			return err
		}
		f.FamilyDiseases = append(f.FamilyDiseases, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT fm.medication_id, m.name, fm.dosage, fm.notes
		FROM clinical_form_medications fm
		JOIN medications_supplements m ON m.id = fm.medication_id
		WHERE fm.form_id = $1
	`, f.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var m FormMedication
		if err := rows.Scan(&m.MedicationID, &m.Name, &m.Dosage, &m.Notes); err != nil {
			rows.Close()
			return err
		}
		f.Medications = append(f.Medications, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT fa.allergen_id, a.name, fa.reaction_details
		FROM clinical_form_allergens fa
		JOIN allergens a ON a.id = fa.allergen_id
		WHERE fa.form_id = $1
	`, f.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var a FormAllergen
		if err := rows.Scan(&a.AllergenID, &a.Name, &a.ReactionDetails); err != nil {
			rows.Close()
			return err
		}
		f.Allergens = append(f.Allergens, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT fp.food_id, fo.name, fp.preference_type
		FROM clinical_form_food_preferences fp
		JOIN foods fo ON fo.id = fp.food_id
		WHERE fp.form_id = $1
	`, f.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var p FormFoodPreference
		if err := rows.Scan(&p.FoodID, &p.Name, &p.Type); err != nil {
			rows.Close()
			return err
		}
		f.FoodPreferencesAndAversions = append(f.FoodPreferencesAndAversions, p)
	}
	rows.Close()
	return rows.Err()
}

func (r *PgRepository) SaveForm(ctx context.Context, form *Form) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO clinical_forms (`+formColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
		ON CONFLICT (patient_id) DO UPDATE SET
			assessment_date = EXCLUDED.assessment_date,
			main_goal = EXCLUDED.main_goal,
			previous_diet_history = EXCLUDED.previous_diet_history,
			intestinal_function = EXCLUDED.intestinal_function,
			sleep_quality = EXCLUDED.sleep_quality,
			energy_level = EXCLUDED.energy_level,
			weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm,
			waist_circumference_cm = EXCLUDED.waist_circumference_cm,
			hip_circumference_cm = EXCLUDED.hip_circumference_cm,
			body_fat_percentage = EXCLUDED.body_fat_percentage,
			muscle_mass_kg = EXCLUDED.muscle_mass_kg,
			blood_pressure = EXCLUDED.blood_pressure,
			emotional_eating_details = EXCLUDED.emotional_eating_details,
			main_food_difficulties = EXCLUDED.main_food_difficulties,
			food_recall_24h = EXCLUDED.food_recall_24h,
			daily_hydration_details = EXCLUDED.daily_hydration_details,
			alcohol_consumption = EXCLUDED.alcohol_consumption,
			meal_times_and_locations = EXCLUDED.meal_times_and_locations,
			sugar_and_sweetener_use = EXCLUDED.sugar_and_sweetener_use,
			water_intake_perception = EXCLUDED.water_intake_perception,
			profession_and_work_routine = EXCLUDED.profession_and_work_routine,
			physical_activity_details = EXCLUDED.physical_activity_details,
			smoking_habits = EXCLUDED.smoking_habits,
			recent_lab_results = EXCLUDED.recent_lab_results
	`,
		form.ID, form.PatientID, form.AssessmentDate, form.MainGoal, form.PreviousDietHistory,
		form.IntestinalFunction, form.SleepQuality, form.EnergyLevel,
		form.WeightKg, form.HeightCm, form.WaistCircumferenceCm, form.HipCircumferenceCm,
		form.BodyFatPercentage, form.MuscleMassKg, form.BloodPressure,
		form.EmotionalEatingDetails, form.MainFoodDifficulties,
		form.FoodRecall24h, form.DailyHydrationDetails, form.AlcoholConsumption,
		form.MealTimesAndLocations, form.SugarAndSweetenerUse, form.WaterIntakePerception,
		form.ProfessionAndWorkRoutine, form.PhysicalActivityDetails, form.SmokingHabits,
		form.RecentLabResults,
	)
	if err != nil {
		return err
	}

	// The stored form keeps its original id on upsert; resolve it for the
	// link tables.
	var formID uuid.UUID
	if err := tx.QueryRow(ctx,
		`SELECT id FROM clinical_forms WHERE patient_id = $1`, form.PatientID).Scan(&formID); err != nil {
		return err
	}

	linkTables := []string{
		"clinical_form_symptoms",
		"clinical_form_diseases",
		"clinical_form_family_diseases",
		"clinical_form_medications",
		"clinical_form_allergens",
		"clinical_form_food_preferences",
	}
	for _, table := range linkTables {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE form_id = $1`, formID); err != nil {
			return err
		}
	}

	for _, s := range form.Symptoms {
		if _, err := tx.Exec(ctx, `
			INSERT INTO clinical_form_symptoms (form_id, symptom_id, intensity, frequency, duration, notes)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, formID, s.SymptomID, s.Intensity, s.Frequency, s.Duration, s.Notes); err != nil {
			return err
		}
	}
	for _, d := range form.DiagnosedDiseases {
		if _, err := tx.Exec(ctx, `
			INSERT INTO clinical_form_diseases (form_id, disease_id, notes)
			VALUES ($1, $2, $3)
		`, formID, d.DiseaseID, d.Notes); err != nil {
			return err
		}
	}
	for _, d := range form.FamilyDiseases {
		if _, err := tx.Exec(ctx, `
			INSERT INTO clinical_form_family_diseases (form_id, disease_id, family_member)
			VALUES ($1, $2, $3)
		`, formID, d.DiseaseID, d.FamilyMember); err != nil {
			return err
		}
	}
	for _, m := range form.Medications {
		if _, err := tx.Exec(ctx, `
			INSERT INTO clinical_form_medications (form_id, medication_id, dosage, notes)
			VALUES ($1, $2, $3, $4)
		`, formID, m.MedicationID, m.Dosage, m.Notes); err != nil {
			return err
		}
	}
	for _, a := range form.Allergens {
		if _, err := tx.Exec(ctx, `
			INSERT INTO clinical_form_allergens (form_id, allergen_id, reaction_details)
			VALUES ($1, $2, $3)
		`, formID, a.AllergenID, a.ReactionDetails); err != nil {
			return err
		}
	}
	for _, p := range form.FoodPreferencesAndAversions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO clinical_form_food_preferences (form_id, food_id, preference_type)
			VALUES ($1, $2, $3)
		`, formID, p.FoodID, p.Type); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
