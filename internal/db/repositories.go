package db

import "gorm.io/gorm"

type Repositories struct {
	MoodRecords *MoodRecordRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		MoodRecords: NewMoodRecordRepository(database),
	}
}
