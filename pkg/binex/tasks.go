package binex

// Task names understood by the school server.
const (
	TaskLogin = "login"

	TaskStudentLeaves     = "get_leaves"
	TaskAllLeaves         = "get_all_leaves"
	TaskApplyLeave        = "apply_leave"
	TaskUpdateLeaveStatus = "update_leave_status"

	TaskComplaints            = "get_complaints"
	TaskAddComplaint          = "add_complaint"
	TaskUpdateComplaintStatus = "update_complaint_status"

	TaskStudents       = "get_students"
	TaskAttendance     = "get_attendance"
	TaskMarkAttendance = "mark_attendance"
	TaskStudentAttend  = "get_student_attendance"

	TaskDues          = "get_dues"
	TaskStudentDues   = "get_student_dues"
	TaskPayments      = "get_payments"
	TaskRecordPayment = "record_payment"
	TaskReceipt       = "get_receipt"

	TaskExamReport = "get_exam_report"

	TaskNotices   = "get_notices"
	TaskAddNotice = "add_notice"

	TaskHomework    = "get_homework"
	TaskAddHomework = "add_homework"

	TaskUploadFile = "upload_file"
)
