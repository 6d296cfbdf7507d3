package app_errors

import "errors"

// auth
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrIncorrectPassword = errors.New("incorrect password")
var ErrPasswordMismatch = errors.New("passwords do not match")
var ErrTokenNotFound = errors.New("token not found")
var ErrTokenExpired = errors.New("token expired")

// catalog
var ErrCourseNotFound = errors.New("course not found")
var ErrCourseNotPublished = errors.New("course not published")
var ErrModuleNotFound = errors.New("module not found")
var ErrLessonNotFound = errors.New("lesson not found")
var ErrQuestionNotFound = errors.New("question not found")
var ErrDuplicateLesson = errors.New("lesson with this order already exists in the module")
var ErrDuplicateModule = errors.New("module with this order already exists in the course")
var ErrDuplicateQuestion = errors.New("question with this order already exists in the lesson")
var ErrNoCorrectAnswer = errors.New("question must have at least one correct answer")
var ErrMultipleCorrectAnswers = errors.New("single answer question can only have one correct answer")
var ErrBadgeExists = errors.New("module already has a badge")
var ErrAlreadyEnrolled = errors.New("user is already enrolled in course")
var ErrInvalidObject = errors.New("invalid file")

// progress
var ErrProgressNotFound = errors.New("progress not found")
var ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
var ErrPreviousLessonIncomplete = errors.New("previous lesson must be completed first")
var ErrCertificateNotFound = errors.New("certificate not found")

// directory
var ErrCountyNotFound = errors.New("county not found")
var ErrCountyExists = errors.New("county already exists")
var ErrConstituencyNotFound = errors.New("constituency not found")
var ErrPositionNotFound = errors.New("position not found")
var ErrPositionExists = errors.New("position already exists")
var ErrElectionNotFound = errors.New("election not found")
var ErrNoSearchResults = errors.New("no matching results found")

// articles
var ErrArticleNotFound = errors.New("article not found")
var ErrDuplicateSlug = errors.New("slug already taken")
