package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

// userColumns is the full single-table projection of users.
const userColumns = `id, username, password_hash, first_name, last_name, email, is_active, created_at, role,
	position, office_location, admin_phone_number,
	teacher_code, department, qualification, phone_number, join_date,
	student_code, date_of_birth, address, student_phone_number, current_year`

// userRow mirrors one users row; the role payload columns are nullable.
type userRow struct {
	models.User
	Position           sql.NullString `db:"position"`
	OfficeLocation     sql.NullString `db:"office_location"`
	AdminPhoneNumber   sql.NullString `db:"admin_phone_number"`
	TeacherCode        sql.NullString `db:"teacher_code"`
	Department         sql.NullString `db:"department"`
	Qualification      sql.NullString `db:"qualification"`
	PhoneNumber        sql.NullString `db:"phone_number"`
	JoinDate           sql.NullTime   `db:"join_date"`
	StudentCode        sql.NullString `db:"student_code"`
	DateOfBirth        sql.NullTime   `db:"date_of_birth"`
	Address            sql.NullString `db:"address"`
	StudentPhoneNumber sql.NullString `db:"student_phone_number"`
	CurrentYear        sql.NullInt64  `db:"current_year"`
}

// UserRepository maps the users table onto role-tagged accounts. It is also the credential
// store accessor used by login.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindCredentials is the first login step: the minimal columns needed to verify a password.
func (r *UserRepository) FindCredentials(ctx context.Context, username string) (*models.Credentials, error) {
	const query = `SELECT id, username, password_hash, role, is_active FROM users WHERE username = ? LIMIT 1`
	var creds models.Credentials
	if err := r.db.GetContext(ctx, &creds, r.db.Rebind(query), username); err != nil {
		return nil, credentialError("find credentials", err)
	}
	return &creds, nil
}

// FindAccount is the second login step: the full row for id, hydrated as the expected role.
func (r *UserRepository) FindAccount(ctx context.Context, id int64, role models.UserRole) (*models.Account, error) {
	account, err := r.findByID(ctx, r.db, id)
	if err != nil {
		return nil, credentialError("find account", err)
	}
	if account.Role != role {
		return nil, appErrors.Clone(appErrors.ErrRoleMismatch,
			fmt.Sprintf("user %d is %s, not %s", id, account.Role, role))
	}
	return account, nil
}

// FindByID returns the account with id whatever its role.
func (r *UserRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Account, error) {
	account, err := r.findByID(ctx, pick(r.db, exec), id)
	if err != nil {
		return nil, storeError("find user by id", err)
	}
	return account, nil
}

// FindByUsername returns the account with username whatever its role.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ? LIMIT 1`
	var row userRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), username); err != nil {
		return nil, storeError("find user by username", err)
	}
	return hydrate(row)
}

func (r *UserRepository) findByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Account, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? LIMIT 1`
	var row userRow
	if err := sqlx.GetContext(ctx, exec, &row, exec.Rebind(query), id); err != nil {
		return nil, err
	}
	return hydrate(row)
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context, exec sqlx.ExtContext) (int, error) {
	var total int
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &total, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, storeError("count users", err)
	}
	return total, nil
}

// List returns accounts based on filters with total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.Account, int, error) {
	baseQuery := `FROM users WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, "role = ?")
		args = append(args, *filter.Role)
	}
	if filter.Active != nil {
		conditions = append(conditions, "is_active = ?")
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(LOWER(username) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?)")
		like := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, like, like, like, like)
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	order := sortClause(filter.SortBy, filter.SortOrder, "id", map[string]bool{
		"id": true, "username": true, "last_name": true, "created_at": true, "role": true,
	})
	_, pageSize, offset := pageBounds(filter.Page, filter.PageSize)

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", userColumns, baseQuery, order, pageSize, offset)
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(listQuery), args...); err != nil {
		return nil, 0, storeError("list users", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) "+baseQuery), args...); err != nil {
		return nil, 0, storeError("count users", err)
	}

	accounts := make([]models.Account, 0, len(rows))
	for _, row := range rows {
		account, err := hydrate(row)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, total, nil
}

// Create inserts the account, writing only the columns of its role, and sets its ID.
func (r *UserRepository) Create(ctx context.Context, exec sqlx.ExtContext, account *models.Account) error {
	if err := account.Validate(); err != nil {
		return appErrors.WrapAs(appErrors.ErrValidation, err, err.Error())
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO users (username, password_hash, first_name, last_name, email, is_active, created_at, role,
		position, office_location, admin_phone_number,
		teacher_code, department, qualification, phone_number, join_date,
		student_code, date_of_birth, address, student_phone_number, current_year)
		VALUES (:username, :password_hash, :first_name, :last_name, :email, :is_active, :created_at, :role,
		:position, :office_location, :admin_phone_number,
		:teacher_code, :department, :qualification, :phone_number, :join_date,
		:student_code, :date_of_birth, :address, :student_phone_number, :current_year)
		RETURNING id`
	id, err := insertReturningID(ctx, pick(r.db, exec), query, dehydrate(account))
	if err != nil {
		return storeError("create user", err)
	}
	account.ID = id
	return nil
}

// Update rewrites the mutable header fields and the role payload. Role itself never changes.
func (r *UserRepository) Update(ctx context.Context, account *models.Account) error {
	if err := account.Validate(); err != nil {
		return appErrors.WrapAs(appErrors.ErrValidation, err, err.Error())
	}
	const query = `UPDATE users SET first_name = :first_name, last_name = :last_name, email = :email,
		position = :position, office_location = :office_location, admin_phone_number = :admin_phone_number,
		teacher_code = :teacher_code, department = :department, qualification = :qualification,
		phone_number = :phone_number, join_date = :join_date,
		student_code = :student_code, date_of_birth = :date_of_birth, address = :address,
		student_phone_number = :student_phone_number, current_year = :current_year
		WHERE id = :id AND role = :role`
	res, err := r.db.NamedExecContext(ctx, query, dehydrate(account))
	if err != nil {
		return storeError("update user", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "update user: not found")
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return execAffecting(ctx, r.db, "update password", `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
}

// SetActive toggles is_active.
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return execAffecting(ctx, r.db, "set user active", `UPDATE users SET is_active = ? WHERE id = ?`, active, id)
}

// Delete removes the user. A student's seats are released in the same transaction before their
// enrollments cascade; a teacher still assigned to sections is restricted.
func (r *UserRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeError("delete user", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const release = `UPDATE class_sections SET current_enrollment = current_enrollment - 1
		WHERE current_enrollment > 0
		AND id IN (SELECT class_section_id FROM enrollments WHERE student_id = ?)`
	if _, err = tx.ExecContext(ctx, tx.Rebind(release), id); err != nil {
		return storeError("release seats", err)
	}
	if err = execAffecting(ctx, tx, "delete user", `DELETE FROM users WHERE id = ?`, id); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return storeError("delete user", err)
	}
	return nil
}

// credentialError narrows failures to what login may observe: typed errors or connectivity.
func credentialError(op string, err error) error {
	translated := storeError(op, err)
	if appErrors.FromError(translated).Code == appErrors.ErrInternal.Code {
		return appErrors.WrapAs(appErrors.ErrConnectivity, err, op+": store failure")
	}
	return translated
}

func hydrate(row userRow) (*models.Account, error) {
	switch row.Role {
	case models.RoleAdmin:
		return models.NewAdminAccount(row.User, models.AdminProfile{
			Position:       row.Position.String,
			OfficeLocation: row.OfficeLocation.String,
			PhoneNumber:    row.AdminPhoneNumber.String,
		}), nil
	case models.RoleTeacher:
		return models.NewTeacherAccount(row.User, models.TeacherProfile{
			TeacherCode:   row.TeacherCode.String,
			Department:    row.Department.String,
			Qualification: row.Qualification.String,
			PhoneNumber:   row.PhoneNumber.String,
			JoinDate:      nullTimePtr(row.JoinDate),
		}), nil
	case models.RoleStudent:
		var year *int
		if row.CurrentYear.Valid {
			y := int(row.CurrentYear.Int64)
			year = &y
		}
		return models.NewStudentAccount(row.User, models.StudentProfile{
			StudentCode: row.StudentCode.String,
			DateOfBirth: nullTimePtr(row.DateOfBirth),
			Address:     row.Address.String,
			PhoneNumber: row.StudentPhoneNumber.String,
			CurrentYear: year,
		}), nil
	default:
		return nil, appErrors.Clone(appErrors.ErrUnknownRoleKind,
			fmt.Sprintf("user %d has unknown role %q", row.ID, row.Role))
	}
}

func dehydrate(a *models.Account) userRow {
	row := userRow{User: a.User}
	switch {
	case a.Admin != nil:
		row.Position = nullString(a.Admin.Position)
		row.OfficeLocation = nullString(a.Admin.OfficeLocation)
		row.AdminPhoneNumber = nullString(a.Admin.PhoneNumber)
	case a.Teacher != nil:
		row.TeacherCode = nullString(a.Teacher.TeacherCode)
		row.Department = nullString(a.Teacher.Department)
		row.Qualification = nullString(a.Teacher.Qualification)
		row.PhoneNumber = nullString(a.Teacher.PhoneNumber)
		row.JoinDate = timePtrNull(a.Teacher.JoinDate)
	case a.Student != nil:
		row.StudentCode = nullString(a.Student.StudentCode)
		row.DateOfBirth = timePtrNull(a.Student.DateOfBirth)
		row.Address = nullString(a.Student.Address)
		row.StudentPhoneNumber = nullString(a.Student.PhoneNumber)
		if a.Student.CurrentYear != nil {
			row.CurrentYear = sql.NullInt64{Int64: int64(*a.Student.CurrentYear), Valid: true}
		}
	}
	return row
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func timePtrNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
