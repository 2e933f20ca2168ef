package domain

const (
	fallbackGeneralAdvice    = "Aucune restriction particulière."
	fallbackVulnerableAdvice = "Consultez un professionnel de santé si nécessaire."
)

// HealthAdvice is the recommendation printed under the AQI badge.
type HealthAdvice struct {
	General    string `json:"general"`
	Vulnerable string `json:"vulnerable"`
}

func (a HealthAdvice) withFallbacks() HealthAdvice {
	if a.General == "" {
		a.General = fallbackGeneralAdvice
	}
	if a.Vulnerable == "" {
		a.Vulnerable = fallbackVulnerableAdvice
	}
	return a
}

// Advisor looks up health advice for an AQI value. Deployments with their own
// advisory source plug it in here.
type Advisor interface {
	Advice(aqi int) HealthAdvice
}

// StaticAdvisor serves a fixed advice table keyed by category.
type StaticAdvisor struct{}

var staticAdvice = map[Category]HealthAdvice{
	CategoryGood: {
		General: "La qualité de l'air est satisfaisante. Profitez des activités en plein air.",
	},
	CategoryModerate: {
		General:    "Qualité de l'air acceptable pour la majorité de la population.",
		Vulnerable: "Les personnes très sensibles devraient limiter les efforts prolongés à l'extérieur.",
	},
	CategoryUnhealthySensitive: {
		General:    "Réduisez les efforts physiques intenses à l'extérieur.",
		Vulnerable: "Enfants, personnes âgées et asthmatiques : évitez les efforts prolongés en plein air.",
	},
	CategoryUnhealthy: {
		General:    "Limitez les activités prolongées en plein air.",
		Vulnerable: "Restez à l'intérieur autant que possible et gardez vos médicaments à portée de main.",
	},
	CategoryVeryUnhealthy: {
		General:    "Évitez les activités en plein air. Portez un masque si vous devez sortir.",
		Vulnerable: "Restez à l'intérieur, fenêtres fermées. Consultez un médecin en cas de gêne respiratoire.",
	},
	CategoryHazardous: {
		General:    "Alerte sanitaire : toute la population doit éviter de sortir.",
		Vulnerable: "Restez à l'intérieur et contactez immédiatement un service de santé en cas de symptômes.",
	},
}

func (StaticAdvisor) Advice(aqi int) HealthAdvice {
	return staticAdvice[CategoryFor(aqi)]
}
