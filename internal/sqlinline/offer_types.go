package sqlinline

const QListOfferTypes = `--sql 55ca54c9-8fc9-4592-a5d8-e133fdb463b3
select title, base, configs, created_at, updated_at
from offer_types
order by base asc, title asc;
`

const QSelectOfferType = `--sql a1f82ce2-c50b-4129-8c91-1d73865a64cc
select title, base, configs, created_at, updated_at
from offer_types
where title = $1 and base = $2;
`

const QUpsertOfferType = `--sql b1edcdb0-69c2-42f0-bae9-630eac6ce2a0
insert into offer_types (title, base, configs)
values ($1, $2, $3::jsonb)
on conflict (title, base) do update
set configs = excluded.configs,
    updated_at = now()
returning created_at, updated_at;
`

const QDeleteOfferType = `--sql a9a41795-726c-467b-b646-d775a5a0ca92
delete from offer_types
where title = $1 and base = $2;
`
