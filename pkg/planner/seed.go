package planner

import "time"

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// SeedEvents returns the fixed demo collection used on fresh installs, so a
// first visit shows a populated dashboard instead of an empty list.
func SeedEvents() []Event {
	events := []Event{
		{
			Id:          "1",
			Title:       "Company Annual Conference",
			Description: "Annual company-wide conference with keynote speakers and workshops",
			Location:    "Grand Hotel Convention Center",
			StartDate:   date(2023, time.December, 10),
			EndDate:     date(2023, time.December, 12),
			StartTime:   "09:00",
			EndTime:     "18:00",
			Status:      EventStatusInProgress,
			Attendees:   250,
			Tasks: []Task{
				{Id: "t1", Title: "Book venue", Description: "Secure the convention center", Completed: true, Priority: TaskPriorityHigh},
				{Id: "t2", Title: "Send invitations", Description: "Email all department heads", Completed: true, Priority: TaskPriorityHigh},
				{Id: "t3", Title: "Arrange catering", Description: "Order lunch and refreshments", Completed: false, Priority: TaskPriorityMedium},
			},
			Budget: Budget{
				Items: []BudgetItem{
					{Id: "b1", Category: "Venue", Description: "Convention center rental", EstimatedAmount: 12000, ActualAmount: 12500, Status: BudgetItemStatusCompleted},
					{Id: "b2", Category: "Catering", Description: "Lunch and refreshments for 250", EstimatedAmount: 8000, ActualAmount: 0, Status: BudgetItemStatusPlanned},
				},
			},
		},
		{
			Id:          "2",
			Title:       "Product Launch",
			Description: "Launch event for our new software product",
			Location:    "Tech Hub",
			StartDate:   date(2023, time.November, 20),
			EndDate:     date(2023, time.November, 20),
			StartTime:   "14:00",
			EndTime:     "20:00",
			Status:      EventStatusNotStarted,
			Attendees:   100,
			Tasks: []Task{
				{Id: "t4", Title: "Prepare demo", Description: "Create product demonstration", Completed: true, Priority: TaskPriorityHigh},
				{Id: "t5", Title: "Media invitations", Description: "Invite press and industry analysts", Completed: false, Priority: TaskPriorityMedium},
			},
			Budget: Budget{Items: []BudgetItem{}},
		},
		{
			Id:          "3",
			Title:       "Team Building Retreat",
			Description: "Outdoor team building activities and workshops",
			Location:    "Mountain View Resort",
			StartDate:   date(2023, time.September, 15),
			EndDate:     date(2023, time.September, 17),
			StartTime:   "08:00",
			EndTime:     "22:00",
			Status:      EventStatusCompleted,
			Attendees:   50,
			Tasks: []Task{
				{Id: "t6", Title: "Book accommodations", Description: "Reserve rooms for all team members", Completed: true, Priority: TaskPriorityHigh},
				{Id: "t7", Title: "Plan activities", Description: "Schedule team building exercises", Completed: true, Priority: TaskPriorityMedium},
				{Id: "t8", Title: "Organize transportation", Description: "Arrange buses for the team", Completed: true, Priority: TaskPriorityMedium},
			},
			Budget: Budget{Items: []BudgetItem{}},
		},
	}
	for i := range events {
		events[i].RecalculateProgress()
		events[i].RecalculateBudgetTotals()
	}
	return events
}
