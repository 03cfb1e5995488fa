package i18n

// Language represents a supported language.
type Language string

const (
	// English is the English language.
	English Language = "en"
	// Spanish is the Spanish language.
	Spanish Language = "es"
)

// DefaultLanguage is the fallback language.
const DefaultLanguage = Language(English)

// translations maps language codes to translation keys and their values.
var translations = map[Language]map[string]string{
	English: {
		"home.title":          "Habits",
		"home.tagline":        "Clean meals, steady training, one day at a time.",
		"home.signin":         "Sign in",
		"home.register":       "Register",
		"home.footer.privacy": "Privacy & Security",
		"home.week":           "This week",

		"language.picker.label": "Language",
		"language.name.en":      "English",
		"language.name.es":      "Español",

		"nav.home":        "Home",
		"nav.track":       "Track",
		"nav.basketball":  "Shooting",
		"nav.deepwork":    "Deep work",
		"nav.progress":    "Progress",
		"nav.groceries":   "Groceries",
		"nav.preferences": "Preferences",

		"weekday.monday":    "Monday",
		"weekday.tuesday":   "Tuesday",
		"weekday.wednesday": "Wednesday",
		"weekday.thursday":  "Thursday",
		"weekday.friday":    "Friday",
		"weekday.saturday":  "Saturday",
		"weekday.sunday":    "Sunday",

		"activity.weightlifting":       "Weightlifting",
		"activity.basketball_pickup":   "Pickup basketball",
		"activity.basketball_training": "Shooting practice",

		"streak.clean":             "Clean streak",
		"streak.fitness":           "Fitness streak",
		"streak.longest":           "Longest",
		"streak.days":              "days",
		"streak.stale":             "Streaks could not be updated.",
		"track.variable":           "Meals",
		"track.fixed":              "Daily staples",
		"track.cheat":              "Cheat meals",
		"track.fitness":            "Training",
		"track.clean":              "Clean day",
		"track.not_clean":          "Not a clean day",
		"track.add_cheat":          "Add cheat meal",
		"progress.title":           "Progress",
		"progress.score":           "Score",
		"progress.goals":           "Weekly goals",
		"period.week":              "This week",
		"period.two_weeks":         "Two weeks",
		"period.month":             "This month",
		"period.three_months":      "Three months",
		"period.year":              "This year",
		"goal.clean_week":          "Clean days",
		"goal.fitness_weekdays":    "Active weekdays",
		"goal.weightlifting_quota": "Weightlifting sessions",
		"goal.basketball_quota":    "Basketball sessions",
		"basketball.title":         "Shooting practice",
		"basketball.complete":      "Complete session",
		"basketball.stats":         "Shooting statistics",
		"deepwork.title":           "Deep work",
		"deepwork.tasks":           "Tasks",
		"deepwork.add_task":        "Add task",
		"deepwork.target":          "Target",
		"deepwork.log":             "Log minutes",
		"deepwork.note":            "Notes",
		"deepwork.save_note":       "Save note",
		"deepwork.stats":           "Task statistics",
		"preferences.title":        "Preferences",
		"preferences.timezone":     "Timezone",
		"preferences.save":         "Save",
		"preferences.export":       "Export my data",
		"preferences.delete":       "Delete account",
		"preferences.logout":       "Sign out",

		"groceries.title":                "Groceries",
		"groceries.reset":                "New shopping list",
		"groceries.reset_confirm":        "Uncheck every item of the list?",
		"groceries.done":                 "List complete! You have everything for the week.",
		"grocery.category.proteinas":     "🥩 Proteins",
		"grocery.category.carbohidratos": "🍚 Carbs",
		"grocery.category.verduras":      "🥦 Vegetables",
		"grocery.category.frutas":        "🍎 Fruit",
		"grocery.category.lacteos":       "🥛 Dairy",
		"grocery.category.otros":         "🧂 Other",
		"grocery.category.suplementos":   "💪 Supplements",
		"grocery.category.snacks":        "🍫 Snacks",
	},
	Spanish: {
		"home.title":          "Hábitos",
		"home.tagline":        "Comidas limpias, entrenamiento constante, un día a la vez.",
		"home.signin":         "Iniciar sesión",
		"home.register":       "Registrarse",
		"home.footer.privacy": "Privacidad y seguridad",
		"home.week":           "Esta semana",

		"language.picker.label": "Idioma",
		"language.name.en":      "English",
		"language.name.es":      "Español",

		"nav.home":        "Inicio",
		"nav.track":       "Registro",
		"nav.basketball":  "Tiro",
		"nav.deepwork":    "Trabajo profundo",
		"nav.progress":    "Progreso",
		"nav.groceries":   "Compras",
		"nav.preferences": "Preferencias",

		"weekday.monday":    "Lunes",
		"weekday.tuesday":   "Martes",
		"weekday.wednesday": "Miércoles",
		"weekday.thursday":  "Jueves",
		"weekday.friday":    "Viernes",
		"weekday.saturday":  "Sábado",
		"weekday.sunday":    "Domingo",

		"activity.weightlifting":       "Pesas",
		"activity.basketball_pickup":   "Partido de básquet",
		"activity.basketball_training": "Práctica de tiro",

		"streak.clean":             "Racha limpia",
		"streak.fitness":           "Racha de entrenamiento",
		"streak.longest":           "Máxima",
		"streak.days":              "días",
		"streak.stale":             "No se pudieron actualizar las rachas.",
		"track.variable":           "Comidas",
		"track.fixed":              "Básicos diarios",
		"track.cheat":              "Comidas trampa",
		"track.fitness":            "Entrenamiento",
		"track.clean":              "Día limpio",
		"track.not_clean":          "No es un día limpio",
		"track.add_cheat":          "Agregar comida trampa",
		"progress.title":           "Progreso",
		"progress.score":           "Puntaje",
		"progress.goals":           "Metas semanales",
		"period.week":              "Esta semana",
		"period.two_weeks":         "Dos semanas",
		"period.month":             "Este mes",
		"period.three_months":      "Tres meses",
		"period.year":              "Este año",
		"goal.clean_week":          "Días limpios",
		"goal.fitness_weekdays":    "Días hábiles activos",
		"goal.weightlifting_quota": "Sesiones de pesas",
		"goal.basketball_quota":    "Sesiones de básquet",
		"basketball.title":         "Práctica de tiro",
		"basketball.complete":      "Completar sesión",
		"basketball.stats":         "Estadísticas de tiro",
		"deepwork.title":           "Trabajo profundo",
		"deepwork.tasks":           "Tareas",
		"deepwork.add_task":        "Agregar tarea",
		"deepwork.target":          "Objetivo",
		"deepwork.log":             "Registrar minutos",
		"deepwork.note":            "Notas",
		"deepwork.save_note":       "Guardar nota",
		"deepwork.stats":           "Estadísticas de tareas",
		"preferences.title":        "Preferencias",
		"preferences.timezone":     "Zona horaria",
		"preferences.save":         "Guardar",
		"preferences.export":       "Exportar mis datos",
		"preferences.delete":       "Eliminar cuenta",
		"preferences.logout":       "Cerrar sesión",

		"groceries.title":                "Lista de compras",
		"groceries.reset":                "Nueva lista de compras",
		"groceries.reset_confirm":        "¿Desmarcar todos los items de la lista?",
		"groceries.done":                 "¡Lista completa! Tienes todo lo que necesitas para la semana.",
		"grocery.category.proteinas":     "🥩 Proteínas",
		"grocery.category.carbohidratos": "🍚 Carbohidratos",
		"grocery.category.verduras":      "🥦 Verduras",
		"grocery.category.frutas":        "🍎 Frutas",
		"grocery.category.lacteos":       "🥛 Lácteos",
		"grocery.category.otros":         "🧂 Otros",
		"grocery.category.suplementos":   "💪 Suplementos",
		"grocery.category.snacks":        "🍫 Snacks",
	},
}

// SupportedLanguages returns a list of all supported languages.
func SupportedLanguages() []Language {
	return []Language{English, Spanish}
}

// IsSupported checks if a language is supported.
func IsSupported(lang Language) bool {
	_, ok := translations[lang]
	return ok
}

// Translate returns the translation for the given key in the specified language.
// If the key is not found, it falls back to the default language.
// If still not found, it returns the key itself.
func Translate(lang Language, key string) string {
	if langTranslations, ok := translations[lang]; ok {
		if translation, ok := langTranslations[key]; ok {
			return translation
		}
	}
	if translation, ok := translations[DefaultLanguage][key]; ok {
		return translation
	}
	return key
}
