package sqlinline

const QSelectUserByUsername = `--sql 9c310379-822d-4920-ae20-90ebe14ab13b
select id, username, password_hash, role, created_at
from users
where username = $1
limit 1;
`

const QInsertAdminUser = `--sql 921fe51b-881b-4641-922a-a781e42af16a
insert into users (username, password_hash, role)
select $1, $2, 'admin'
where not exists (select 1 from users where username = $1);
`

const QTouchSession = `--sql fbcf1d76-68a9-4b9c-a06a-ebf6ad06c67b
insert into sessions (session_id, country, last_seen_at)
values ($1, $2, now())
on conflict (session_id) do update
set last_seen_at = now(),
    country = coalesce(excluded.country, sessions.country);
`
