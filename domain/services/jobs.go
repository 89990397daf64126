package services

import (
	"incoin/domain/entities"
	"incoin/domain/interfaces"
)

const (
	JobYoutuber = "Youtuber"

	presidentBaseMin      int64 = 400000
	presidentBaseMax      int64 = 650000
	presidentMemberBonus  int64 = 30000
	youtuberMultiplierMin int64 = 500
	youtuberMultiplierMax int64 = 1250
	youtuberFallbackMin   int64 = 10
	youtuberFallbackMax   int64 = 100
)

// Job is an entry of the job catalog
type Job struct {
	Name       string
	MinIncome  int64
	MaxIncome  int64
	ChangeCost int64
	// Selectable jobs can be picked with job-change and assigned by admins
	Selectable bool
}

var jobCatalog = []Job{
	{Name: entities.JobUnemployed, MinIncome: 1000, MaxIncome: 1500, ChangeCost: 0, Selectable: true},
	{Name: JobYoutuber, MinIncome: youtuberFallbackMin, MaxIncome: youtuberFallbackMax, ChangeCost: 3000, Selectable: true},
	{Name: entities.JobPresident, MinIncome: presidentBaseMin, MaxIncome: presidentBaseMax},
	{Name: "お肉屋", MinIncome: 2000, MaxIncome: 2500, ChangeCost: 100000, Selectable: true},
	{Name: "魚屋", MinIncome: 4500, MaxIncome: 7500, ChangeCost: 750000, Selectable: true},
	{Name: "レストラン店主", MinIncome: 8000, MaxIncome: 10000, ChangeCost: 1000000, Selectable: true},
	{Name: "カフェ店主", MinIncome: 12000, MaxIncome: 13000, ChangeCost: 1700000, Selectable: true},
	{Name: "タクシー運転手", MinIncome: 17500, MaxIncome: 23000, ChangeCost: 3000000, Selectable: true},
	{Name: "バス運転手", MinIncome: 25000, MaxIncome: 30000, ChangeCost: 3500000, Selectable: true},
	{Name: "ホテル支配人", MinIncome: 45000, MaxIncome: 60000, ChangeCost: 5000000, Selectable: true},
	{Name: "科学技術者", MinIncome: 70000, MaxIncome: 80000, ChangeCost: 6500000, Selectable: true},
	{Name: "公認会計士", MinIncome: 85000, MaxIncome: 100000, ChangeCost: 7500000, Selectable: true},
	{Name: "歯科医師", MinIncome: 115000, MaxIncome: 130000, ChangeCost: 8000000, Selectable: true},
	{Name: "医者", MinIncome: 140000, MaxIncome: 175000, ChangeCost: 11000000, Selectable: true},
	{Name: "航空機操縦士", MinIncome: 150000, MaxIncome: 210000, ChangeCost: 16500000, Selectable: true},
}

// Jobs returns the whole catalog in display order
func Jobs() []Job {
	return append([]Job(nil), jobCatalog...)
}

// SelectableJobs returns the jobs a user may switch to
func SelectableJobs() []Job {
	jobs := make([]Job, 0, len(jobCatalog))
	for _, j := range jobCatalog {
		if j.Selectable {
			jobs = append(jobs, j)
		}
	}
	return jobs
}

// LookupJob finds a job by exact name
func LookupJob(name string) (Job, bool) {
	for _, j := range jobCatalog {
		if j.Name == name {
			return j, true
		}
	}
	return Job{}, false
}

// JobIncome rolls one work payout for the user. company is the user's
// company, or nil when it has none.
func JobIncome(rng interfaces.RandomSource, user *entities.UserAccount, company *entities.Company) int64 {
	unemployed := jobCatalog[0]

	switch user.Job {
	case JobYoutuber:
		if user.CreditPoint > 0 {
			return user.CreditPoint * randInt(rng, youtuberMultiplierMin, youtuberMultiplierMax)
		}
		return randInt(rng, youtuberFallbackMin, youtuberFallbackMax)
	case entities.JobPresident:
		if company != nil && company.IsOwner(user.UserID) {
			return randInt(rng, presidentBaseMin, presidentBaseMax) + int64(len(company.Members))*presidentMemberBonus
		}
		return randInt(rng, unemployed.MinIncome, unemployed.MaxIncome)
	}

	job, ok := LookupJob(user.Job)
	if !ok {
		job = unemployed
	}
	return randInt(rng, job.MinIncome, job.MaxIncome)
}

// IncomeRange returns the bounds JobIncome rolls between for the user
func IncomeRange(user *entities.UserAccount, company *entities.Company) (int64, int64) {
	unemployed := jobCatalog[0]

	switch user.Job {
	case JobYoutuber:
		if user.CreditPoint > 0 {
			return user.CreditPoint * youtuberMultiplierMin, user.CreditPoint * youtuberMultiplierMax
		}
		return youtuberFallbackMin, youtuberFallbackMax
	case entities.JobPresident:
		if company != nil && company.IsOwner(user.UserID) {
			bonus := int64(len(company.Members)) * presidentMemberBonus
			return presidentBaseMin + bonus, presidentBaseMax + bonus
		}
		return unemployed.MinIncome, unemployed.MaxIncome
	}

	job, ok := LookupJob(user.Job)
	if !ok {
		job = unemployed
	}
	return job.MinIncome, job.MaxIncome
}
