package models

import "time"

const (
	WeekdayMonday    = "Segunda-feira"
	WeekdayTuesday   = "Terça-feira"
	WeekdayWednesday = "Quarta-feira"
	WeekdayThursday  = "Quinta-feira"
	WeekdayFriday    = "Sexta-feira"
	WeekdaySaturday  = "Sábado"
	WeekdaySunday    = "Domingo"
)

// WeekdayNames lists the seven labels in Monday-first order, matching how the
// order log spells them.
var WeekdayNames = []string{
	WeekdayMonday,
	WeekdayTuesday,
	WeekdayWednesday,
	WeekdayThursday,
	WeekdayFriday,
	WeekdaySaturday,
	WeekdaySunday,
}

var weekdayByTime = map[time.Weekday]string{
	time.Monday:    WeekdayMonday,
	time.Tuesday:   WeekdayTuesday,
	time.Wednesday: WeekdayWednesday,
	time.Thursday:  WeekdayThursday,
	time.Friday:    WeekdayFriday,
	time.Saturday:  WeekdaySaturday,
	time.Sunday:    WeekdaySunday,
}

// WeekdayName maps a time.Weekday to the order-log label.
func WeekdayName(d time.Weekday) string {
	return weekdayByTime[d]
}
