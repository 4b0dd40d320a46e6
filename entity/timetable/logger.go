package timetable

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "timetable")
